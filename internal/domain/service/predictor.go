package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
)

// positiveClass is the index of the disease-present probability.
const positiveClass = 1

// thresholdPercent is the decision boundary of PolicyThreshold; a prediction is
// HIGH only when the percentage is strictly greater than it.
var thresholdPercent = decimal.NewFromInt(50)

// Predictor aligns raw input to the model schema, runs the classifier and labels the result.
// Every failure is returned as *model.InferenceError; a panicking classifier is recovered.
type Predictor struct {
	aligner      *FeatureAligner
	classifier   port.Classifier
	loadErr      error
	policy       valueobject.DecisionPolicy
	modelVersion string
}

// NewPredictor creates a Predictor over an already loaded classifier.
func NewPredictor(
	classifier port.Classifier,
	schema model.Schema,
	policy valueobject.DecisionPolicy,
	modelVersion string,
) (*Predictor, error) {
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	aligner, err := NewFeatureAligner(schema)
	if err != nil {
		return nil, err
	}
	if policy.IsZero() {
		policy = valueobject.PolicyThreshold
	}

	return &Predictor{
		aligner:      aligner,
		classifier:   classifier,
		policy:       policy,
		modelVersion: modelVersion,
	}, nil
}

// NewUnavailablePredictor creates a Predictor for a process whose model failed to load.
// Every Predict call fails with an InferenceError wrapping model.ErrModelUnavailable and cause.
func NewUnavailablePredictor(cause error, policy valueobject.DecisionPolicy) *Predictor {
	if cause == nil {
		cause = fmt.Errorf("no model configured")
	}
	if policy.IsZero() {
		policy = valueobject.PolicyThreshold
	}
	return &Predictor{loadErr: cause, policy: policy}
}

// Available reports whether a model is loaded.
func (p *Predictor) Available() bool {
	return p.loadErr == nil
}

// LoadError returns the startup failure, or nil when a model is loaded.
func (p *Predictor) LoadError() error {
	return p.loadErr
}

// Schema returns the feature schema the model expects. It is empty when no model is loaded.
func (p *Predictor) Schema() model.Schema {
	if p.aligner == nil {
		return nil
	}
	return p.aligner.Schema()
}

// Policy returns the decision policy in effect.
func (p *Predictor) Policy() valueobject.DecisionPolicy {
	return p.policy
}

// ModelVersion returns the version declared by the loaded artifact.
func (p *Predictor) ModelVersion() string {
	return p.modelVersion
}

// Predict runs one alignment and inference pass over raw.
func (p *Predictor) Predict(ctx context.Context, raw model.RawInput) (model.PredictionResult, error) {
	if p.loadErr != nil {
		return model.PredictionResult{}, model.NewInferenceError(fmt.Errorf("%w: %w", model.ErrModelUnavailable, p.loadErr))
	}

	features, err := p.aligner.Align(raw)
	if err != nil {
		return model.PredictionResult{}, model.NewInferenceError(err)
	}

	probs, err := p.predictProbability(ctx, features)
	if err != nil {
		return model.PredictionResult{}, model.NewInferenceError(err)
	}
	if len(probs) <= positiveClass {
		return model.PredictionResult{}, model.NewInferenceError(fmt.Errorf("model returned %d class probabilities, want at least 2", len(probs)))
	}
	probability := probs[positiveClass]
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return model.PredictionResult{}, model.NewInferenceError(fmt.Errorf("model returned probability %v outside [0,1]", probability))
	}

	label, err := p.label(ctx, features, probability)
	if err != nil {
		return model.PredictionResult{}, model.NewInferenceError(err)
	}

	result, err := model.NewPredictionResult(probability, label, p.policy, p.modelVersion)
	if err != nil {
		return model.PredictionResult{}, model.NewInferenceError(err)
	}
	return result, nil
}

func (p *Predictor) label(ctx context.Context, features model.FeatureVector, probability float64) (valueobject.RiskLabel, error) {
	if p.policy == valueobject.PolicyNative {
		class, err := p.predict(ctx, features)
		if err != nil {
			return valueobject.RiskLabel{}, err
		}
		return valueobject.RiskLabelFromBool(class == positiveClass), nil
	}

	percent := decimal.NewFromFloat(probability).Mul(decimal.NewFromInt(100))
	return valueobject.RiskLabelFromBool(percent.GreaterThan(thresholdPercent)), nil
}

func (p *Predictor) predictProbability(ctx context.Context, features model.FeatureVector) (probs []float64, err error) {
	defer recoverModelPanic(&err)
	probs, err = p.classifier.PredictProbability(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("predict probability: %w", err)
	}
	return probs, nil
}

func (p *Predictor) predict(ctx context.Context, features model.FeatureVector) (class int, err error) {
	defer recoverModelPanic(&err)
	class, err = p.classifier.Predict(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return class, nil
}

func recoverModelPanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("model panicked: %v", r)
	}
}
