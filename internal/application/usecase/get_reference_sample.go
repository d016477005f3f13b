package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/domain/port"
)

// GetReferenceSample is the use case for reading the reference sample.
type GetReferenceSample struct {
	repo port.ReferenceSampleRepository
}

// NewGetReferenceSample creates a new GetReferenceSample use case.
func NewGetReferenceSample(repo port.ReferenceSampleRepository) *GetReferenceSample {
	return &GetReferenceSample{repo: repo}
}

// Execute returns the sample and its column means.
func (uc *GetReferenceSample) Execute(ctx context.Context) (dto.ReferenceSampleResponse, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return dto.ReferenceSampleResponse{}, fmt.Errorf("failed to load reference sample: %w", err)
	}
	return dto.FromReferenceSample(records), nil
}
