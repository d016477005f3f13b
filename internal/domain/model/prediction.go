package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
)

var hundred = decimal.NewFromInt(100)

// PredictionResult is the ephemeral outcome of one inference pass.
type PredictionResult struct {
	predictedAt  time.Time
	percent      decimal.Decimal
	riskLabel    valueobject.RiskLabel
	policy       valueobject.DecisionPolicy
	modelVersion string
	probability  float64
	id           uuid.UUID
}

// NewPredictionResult builds a result from the positive-class probability.
func NewPredictionResult(
	probability float64,
	label valueobject.RiskLabel,
	policy valueobject.DecisionPolicy,
	modelVersion string,
) (PredictionResult, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return PredictionResult{}, fmt.Errorf("probability %v outside [0,1]", probability)
	}
	if label.IsZero() {
		return PredictionResult{}, fmt.Errorf("risk label is required")
	}

	return PredictionResult{
		id:           uuid.New(),
		probability:  probability,
		percent:      ProbabilityPercent(probability),
		riskLabel:    label,
		policy:       policy,
		modelVersion: modelVersion,
		predictedAt:  time.Now().UTC(),
	}, nil
}

// ProbabilityPercent scales p to a percentage rounded to two places.
func ProbabilityPercent(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Mul(hundred).Round(2)
}

func (r PredictionResult) ID() uuid.UUID                      { return r.id }
func (r PredictionResult) Probability() float64               { return r.probability }
func (r PredictionResult) Percent() decimal.Decimal           { return r.percent }
func (r PredictionResult) RiskLabel() valueobject.RiskLabel   { return r.riskLabel }
func (r PredictionResult) Policy() valueobject.DecisionPolicy { return r.policy }
func (r PredictionResult) ModelVersion() string               { return r.modelVersion }
func (r PredictionResult) PredictedAt() time.Time             { return r.predictedAt }

// HighRisk reports whether the label is HIGH.
func (r PredictionResult) HighRisk() bool {
	return r.riskLabel.IsHigh()
}

// PercentString renders the probability for display, e.g. "73.00%".
func (r PredictionResult) PercentString() string {
	return r.percent.StringFixed(2) + "%"
}
