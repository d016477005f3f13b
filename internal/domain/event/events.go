package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/cardiorisk/pkg/events"
)

const (
	// AggregateTypePrediction names the aggregate every prediction event belongs to.
	AggregateTypePrediction = "prediction"

	// EventTypePredictionCompleted is emitted after every successful prediction.
	EventTypePredictionCompleted = "cardio.prediction.completed"

	// EventTypeHighRiskPredicted is emitted when a prediction is labeled HIGH.
	EventTypeHighRiskPredicted = "cardio.high_risk.predicted"
)

// PredictionCompleted carries the outcome of a prediction. Patient inputs are
// never part of the payload.
type PredictionCompleted struct {
	PredictionID uuid.UUID `json:"prediction_id"`
	Probability  float64   `json:"probability"`
	RiskLabel    string    `json:"risk_label"`
	Policy       string    `json:"policy"`
	ModelVersion string    `json:"model_version"`
	PredictedAt  time.Time `json:"predicted_at"`
}

// HighRiskPredicted is published alongside PredictionCompleted for HIGH labels.
type HighRiskPredicted struct {
	PredictionID uuid.UUID `json:"prediction_id"`
	Probability  float64   `json:"probability"`
	ModelVersion string    `json:"model_version"`
	DetectedAt   time.Time `json:"detected_at"`
}

// NewPredictionCompleted wraps the payload in a domain event envelope.
func NewPredictionCompleted(p PredictionCompleted) (events.DomainEvent, error) {
	return newEvent(EventTypePredictionCompleted, p.PredictionID, p)
}

// NewHighRiskPredicted wraps the payload in a domain event envelope.
func NewHighRiskPredicted(p HighRiskPredicted) (events.DomainEvent, error) {
	return newEvent(EventTypeHighRiskPredicted, p.PredictionID, p)
}

func newEvent(eventType string, aggregateID uuid.UUID, payload any) (events.DomainEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return events.NewBaseEvent(eventType, aggregateID, AggregateTypePrediction, data), nil
}
