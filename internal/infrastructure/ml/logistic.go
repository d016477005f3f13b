package ml

import (
	"context"
	"fmt"
	"math"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
)

var _ port.Classifier = (*LogisticModel)(nil)

// LogisticModel is a binary logistic regression with optional standard scaling.
// It is immutable after construction.
type LogisticModel struct {
	version   string
	schema    model.Schema
	coef      []float64
	mean      []float64
	scale     []float64
	intercept float64
}

// NewLogisticModel validates art and builds the classifier.
func NewLogisticModel(art Artifact) (*LogisticModel, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}

	n := len(art.FeatureNames)
	m := &LogisticModel{
		version:   art.Version,
		schema:    append(model.Schema(nil), art.FeatureNames...),
		coef:      append([]float64(nil), art.Coefficients...),
		intercept: art.Intercept,
		mean:      make([]float64, n),
		scale:     make([]float64, n),
	}
	for i := range m.scale {
		m.scale[i] = 1
	}
	if art.Scaler != nil {
		copy(m.mean, art.Scaler.Mean)
		copy(m.scale, art.Scaler.Scale)
	}
	return m, nil
}

// Schema returns the feature names the model was fit on, in order.
func (m *LogisticModel) Schema() model.Schema {
	return append(model.Schema(nil), m.schema...)
}

// Version returns the artifact version string.
func (m *LogisticModel) Version() string {
	return m.version
}

// Predict returns 1 when the decision function is positive, 0 otherwise.
func (m *LogisticModel) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	z, err := m.decision(ctx, features)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictProbability returns [p(no disease), p(disease)].
func (m *LogisticModel) PredictProbability(ctx context.Context, features model.FeatureVector) ([]float64, error) {
	z, err := m.decision(ctx, features)
	if err != nil {
		return nil, err
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

func (m *LogisticModel) decision(ctx context.Context, features model.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !features.Conforms(m.schema) {
		return 0, fmt.Errorf("%w: vector %v does not match model features %v", model.ErrSchemaMismatch, features.Names, m.schema)
	}

	z := m.intercept
	for i, x := range features.Values {
		z += m.coef[i] * (x - m.mean[i]) / m.scale[i]
	}
	return z, nil
}

// sigmoid is split by sign to avoid overflow in math.Exp.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
