package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
)

// Compile-time assertion that CardioRiskHandler implements CardioRiskServiceServer.
var _ CardioRiskServiceServer = (*CardioRiskHandler)(nil)

// CardioRiskHandler implements the gRPC CardioRiskServiceServer interface.
type CardioRiskHandler struct {
	UnimplementedCardioRiskServiceServer
	predictRisk   *usecase.PredictRisk
	describeModel *usecase.DescribeModel
	catalog       *catalog.Catalog
	logger        *slog.Logger
}

// NewCardioRiskHandler creates a new gRPC handler.
func NewCardioRiskHandler(
	predictRisk *usecase.PredictRisk,
	describeModel *usecase.DescribeModel,
	fields *catalog.Catalog,
	logger *slog.Logger,
) *CardioRiskHandler {
	return &CardioRiskHandler{
		predictRisk:   predictRisk,
		describeModel: describeModel,
		catalog:       fields,
		logger:        logger,
	}
}

// Predict scores one patient.
func (h *CardioRiskHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if len(req.Inputs) == 0 {
		return nil, status.Error(codes.InvalidArgument, "inputs are required")
	}

	resp, err := h.predictRisk.Execute(ctx, dto.PredictRequest{Inputs: req.Inputs})
	if err != nil {
		return nil, toStatus(err)
	}
	return toPredictResponse(resp), nil
}

// GetSchema describes the model and the form fields it consumes.
func (h *CardioRiskHandler) GetSchema(_ context.Context, _ *GetSchemaRequest) (*GetSchemaResponse, error) {
	m := h.describeModel.Execute()

	resp := &GetSchemaResponse{
		Features:     m.Features,
		ModelVersion: m.ModelVersion,
		Policy:       m.Policy,
		Available:    m.Available,
		LoadError:    m.LoadError,
	}
	for _, f := range h.catalog.Fields() {
		fm := FieldMsg{
			Name:    f.Name,
			Label:   f.Label,
			Kind:    f.Kind,
			Default: f.Default,
			Min:     f.Min,
			Max:     f.Max,
			Step:    f.Step,
		}
		for _, o := range f.Options {
			fm.Options = append(fm.Options, OptionMsg{Value: o.Value, Label: o.Label})
		}
		resp.Fields = append(resp.Fields, fm)
	}
	return resp, nil
}

func toPredictResponse(r dto.PredictionResponse) *PredictResponse {
	return &PredictResponse{
		ID:           r.ID.String(),
		Probability:  r.Probability,
		Percent:      r.Percent,
		Display:      r.Display,
		RiskLabel:    r.RiskLabel,
		HighRisk:     r.HighRisk,
		Message:      r.Message,
		Policy:       r.Policy,
		ModelVersion: r.ModelVersion,
		PredictedAt:  timestamppb.New(r.PredictedAt),
	}
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrModelUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, model.ErrSchemaMismatch),
		errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, model.ErrOutOfRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
