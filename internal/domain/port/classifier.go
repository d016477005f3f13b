package port

import (
	"context"

	"github.com/bibbank/cardiorisk/internal/domain/model"
)

// Classifier is the opaque, externally trained estimator. Implementations are
// loaded once and treated as immutable; they must be safe for concurrent use.
type Classifier interface {
	// Predict returns the model's own discrete class label for the vector.
	Predict(ctx context.Context, features model.FeatureVector) (label int, err error)

	// PredictProbability returns one probability per class; index 1 is the
	// positive (disease present) class.
	PredictProbability(ctx context.Context, features model.FeatureVector) ([]float64, error)
}
