package event_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardiorisk/internal/domain/event"
)

func TestNewPredictionCompleted(t *testing.T) {
	id := uuid.New()
	evt, err := event.NewPredictionCompleted(event.PredictionCompleted{
		PredictionID: id,
		Probability:  0.73,
		RiskLabel:    "HIGH",
		Policy:       "threshold",
		ModelVersion: "cleveland-lr-1",
		PredictedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, event.EventTypePredictionCompleted, evt.EventType())
	assert.Equal(t, id, evt.AggregateID())
	assert.Equal(t, event.AggregateTypePrediction, evt.AggregateType())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload(), &payload))
	assert.Equal(t, "HIGH", payload["risk_label"])
	assert.Equal(t, 0.73, payload["probability"])
	assert.NotContains(t, payload, "age")
}

func TestNewHighRiskPredicted(t *testing.T) {
	id := uuid.New()
	evt, err := event.NewHighRiskPredicted(event.HighRiskPredicted{
		PredictionID: id,
		Probability:  0.91,
		DetectedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, event.EventTypeHighRiskPredicted, evt.EventType())
	assert.Equal(t, id, evt.AggregateID())
}
