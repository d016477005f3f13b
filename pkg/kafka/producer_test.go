package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}, ClientID: "cardiod"})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Equal(t, "cardiod", p.transport.ClientID)
	assert.Nil(t, p.transport.TLS)
	assert.Nil(t, p.transport.SASL)
	assert.Empty(t, p.writers)
}

func TestNewProducer_RejectsUnknownSASL(t *testing.T) {
	_, err := NewProducer(Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"})
	assert.ErrorContains(t, err, "unsupported sasl mechanism")
}

func TestConfigSASLMechanisms(t *testing.T) {
	for _, mech := range []string{"", "PLAIN", "scram-sha-256", "SCRAM-SHA-512"} {
		t.Run(mech, func(t *testing.T) {
			cfg := Config{SASLEnabled: true, SASLMechanism: mech, SASLUsername: "u", SASLPassword: "p"}
			m, err := cfg.saslMechanism()
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestConfigTLS(t *testing.T) {
	assert.Nil(t, Config{}.tlsConfig())
	assert.NotNil(t, Config{TLS: true}.tlsConfig())
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Brokers: []string{"kafka:9092"}}.Enabled())
}

func TestProducerWriterPerTopic(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.writer("cardio.prediction.completed")
	assert.Same(t, w1, p.writer("cardio.prediction.completed"))
	assert.NotSame(t, w1, p.writer("cardio.audit"))
	assert.Len(t, p.writers, 2)
	assert.Same(t, p.transport, w1.Transport)

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestPublishNothingIsNoop(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "cardio.prediction.completed"))
	assert.Empty(t, p.writers)
}
