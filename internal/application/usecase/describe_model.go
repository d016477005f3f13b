package usecase

import (
	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/domain/service"
)

// DescribeModel reports which model the process serves, or why none is loaded.
type DescribeModel struct {
	predictor *service.Predictor
}

// NewDescribeModel creates a new DescribeModel use case.
func NewDescribeModel(predictor *service.Predictor) *DescribeModel {
	return &DescribeModel{predictor: predictor}
}

// Execute returns the model status.
func (uc *DescribeModel) Execute() dto.ModelStatusResponse {
	resp := dto.ModelStatusResponse{
		Features:     []string(uc.predictor.Schema()),
		ModelVersion: uc.predictor.ModelVersion(),
		Policy:       uc.predictor.Policy().String(),
		Available:    uc.predictor.Available(),
	}
	if resp.Features == nil {
		resp.Features = []string{}
	}
	if err := uc.predictor.LoadError(); err != nil {
		resp.LoadError = err.Error()
	}
	return resp
}
