package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/domain/event"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/pkg/events"
)

const tracerName = "github.com/bibbank/cardiorisk/internal/application/usecase"

// PredictRisk validates a form submission, scores it and announces the outcome.
type PredictRisk struct {
	predictor *service.Predictor
	validator port.InputValidator
	publisher port.EventPublisher
	metrics   *Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewPredictRisk creates the use case. validator, publisher and metrics may be nil.
func NewPredictRisk(
	predictor *service.Predictor,
	validator port.InputValidator,
	publisher port.EventPublisher,
	metrics *Metrics,
	logger *slog.Logger,
) *PredictRisk {
	return &PredictRisk{
		predictor: predictor,
		validator: validator,
		publisher: publisher,
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Execute returns a *model.InferenceError for any failure. A failure to publish
// the outcome is logged and does not fail the prediction.
func (uc *PredictRisk) Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictionResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "PredictRisk")
	defer span.End()

	start := time.Now()
	result, err := uc.predict(ctx, model.RawInput(req.Inputs))
	uc.metrics.observe(ctx, start, result, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorReason(err))
		uc.logger.WarnContext(ctx, "prediction failed",
			slog.String("reason", ErrorReason(err)),
			slog.String("error", err.Error()),
		)
		return dto.PredictionResponse{}, err
	}

	span.SetAttributes(
		attribute.String("prediction.id", result.ID().String()),
		attribute.String("prediction.risk", result.RiskLabel().String()),
		attribute.String("model.version", result.ModelVersion()),
	)
	uc.logger.InfoContext(ctx, "prediction completed",
		slog.String("prediction_id", result.ID().String()),
		slog.String("risk", result.RiskLabel().String()),
		slog.String("policy", result.Policy().String()),
		slog.String("percent", result.PercentString()),
	)

	uc.announce(ctx, result)
	return dto.FromPrediction(result), nil
}

func (uc *PredictRisk) predict(ctx context.Context, raw model.RawInput) (model.PredictionResult, error) {
	if uc.validator != nil && uc.predictor.Available() {
		if err := uc.validator.Validate(raw); err != nil {
			return model.PredictionResult{}, model.NewInferenceError(err)
		}
	}
	return uc.predictor.Predict(ctx, raw)
}

func (uc *PredictRisk) announce(ctx context.Context, result model.PredictionResult) {
	if uc.publisher == nil {
		return
	}

	var collector events.EventCollector
	completed, err := event.NewPredictionCompleted(event.PredictionCompleted{
		PredictionID: result.ID(),
		Probability:  result.Probability(),
		RiskLabel:    result.RiskLabel().String(),
		Policy:       result.Policy().String(),
		ModelVersion: result.ModelVersion(),
		PredictedAt:  result.PredictedAt(),
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to build prediction event", slog.String("error", err.Error()))
		return
	}
	collector.Record(completed)

	if result.HighRisk() {
		high, err := event.NewHighRiskPredicted(event.HighRiskPredicted{
			PredictionID: result.ID(),
			Probability:  result.Probability(),
			ModelVersion: result.ModelVersion(),
			DetectedAt:   result.PredictedAt(),
		})
		if err != nil {
			uc.logger.ErrorContext(ctx, "failed to build high risk event", slog.String("error", err.Error()))
		} else {
			collector.Record(high)
		}
	}

	if err := uc.publisher.Publish(ctx, collector.ClearEvents()...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish prediction events",
			slog.String("prediction_id", result.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}
