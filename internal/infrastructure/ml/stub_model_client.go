package ml

import (
	"context"
	"log/slog"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
)

var _ port.Classifier = (*StubClassifier)(nil)

// StubClassifier returns a fixed positive-class probability for any input.
// It backs local development without a trained artifact.
type StubClassifier struct {
	logger      *slog.Logger
	probability float64
}

// NewStubClassifier creates a stub that always reports probability for class 1.
func NewStubClassifier(probability float64, logger *slog.Logger) *StubClassifier {
	return &StubClassifier{probability: probability, logger: logger}
}

// Predict returns 1 when the fixed probability exceeds one half.
func (c *StubClassifier) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	if c.probability > 0.5 {
		return 1, nil
	}
	return 0, nil
}

// PredictProbability returns the fixed probability pair.
func (c *StubClassifier) PredictProbability(ctx context.Context, features model.FeatureVector) ([]float64, error) {
	c.logger.Debug("stub model prediction requested",
		slog.Int("feature_count", features.Len()),
	)
	return []float64{1 - c.probability, c.probability}, nil
}
