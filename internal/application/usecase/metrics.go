package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/cardiorisk/internal/domain/model"
)

// Metrics records prediction outcomes.
type Metrics struct {
	predictions metric.Int64Counter
	errors      metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics registers the prediction instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	predictions, err := meter.Int64Counter("cardio_predictions_total",
		metric.WithDescription("Completed predictions by risk label and decision policy."))
	if err != nil {
		return nil, fmt.Errorf("create predictions counter: %w", err)
	}
	errs, err := meter.Int64Counter("cardio_inference_errors_total",
		metric.WithDescription("Failed predictions by reason."))
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}
	duration, err := meter.Float64Histogram("cardio_inference_duration_seconds",
		metric.WithDescription("Time spent validating, aligning and scoring one request."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return &Metrics{predictions: predictions, errors: errs, duration: duration}, nil
}

func (m *Metrics) observe(ctx context.Context, start time.Time, result model.PredictionResult, err error) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", ErrorReason(err))))
		return
	}
	m.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("risk", result.RiskLabel().String()),
		attribute.String("policy", result.Policy().String()),
	))
}

// ErrorReason classifies a prediction failure for metrics and logs.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, model.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, model.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, model.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, model.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "model_error"
	}
}
