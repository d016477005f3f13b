package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ DomainEvent = BaseEvent{}

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()

	before := time.Now().UTC()
	e := NewBaseEvent("cardio.prediction.completed", aggregateID, "prediction", []byte(`{"risk_label":"LOW"}`))
	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.Equal(t, "cardio.prediction.completed", e.EventType())
	assert.Equal(t, aggregateID, e.AggregateID())
	assert.Equal(t, "prediction", e.AggregateType())
	assert.False(t, e.OccurredAt().Before(before))
	assert.False(t, e.OccurredAt().After(after))
	assert.JSONEq(t, `{"risk_label":"LOW"}`, string(e.Payload()))
}

func TestNewBaseEvent_UniqueIDs(t *testing.T) {
	a := NewBaseEvent("x", uuid.New(), "prediction", nil)
	b := NewBaseEvent("x", uuid.New(), "prediction", nil)
	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestWrap(t *testing.T) {
	e := NewBaseEvent("cardio.high_risk.predicted", uuid.New(), "prediction", []byte(`{"probability":0.91}`))

	data, err := json.Marshal(Wrap(e))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, e.EventID().String(), got["event_id"])
	assert.Equal(t, "cardio.high_risk.predicted", got["event_type"])
	assert.Equal(t, map[string]any{"probability": 0.91}, got["payload"])
}

func TestWrap_EmptyPayloadIsNull(t *testing.T) {
	data, err := json.Marshal(Wrap(NewBaseEvent("x", uuid.New(), "prediction", nil)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payload":null`)
}

func TestEventCollector(t *testing.T) {
	var c EventCollector
	e1 := NewBaseEvent("a", uuid.New(), "prediction", nil)
	e2 := NewBaseEvent("b", uuid.New(), "prediction", nil)

	c.Record(e1)
	c.Record(e2)
	assert.Equal(t, 2, c.Len())
	assert.Len(t, c.Events(), 2)

	cleared := c.ClearEvents()
	assert.Equal(t, []DomainEvent{e1, e2}, cleared)
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Events())
}
