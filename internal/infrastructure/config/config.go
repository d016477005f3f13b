package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
)

// Config holds all configuration for the cardio risk service.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort    string `env:"GRPC_PORT" envDefault:"9090"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ModelPath      string `env:"MODEL_PATH" envDefault:"models/model.json"`
	DecisionPolicy string `env:"DECISION_POLICY" envDefault:"threshold"`
	// StubProbability replaces the trained model with a fixed-output stub when set.
	StubProbability *float64 `env:"MODEL_STUB_PROBABILITY"`

	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"cardio.prediction.completed"`
	KafkaTLS     bool     `env:"KAFKA_TLS" envDefault:"false"`

	// KafkaSASLMechanism enables SASL when set: PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	KafkaSASLMechanism string `env:"KAFKA_SASL_MECHANISM"`
	KafkaSASLUsername  string `env:"KAFKA_SASL_USERNAME"`
	KafkaSASLPassword  string `env:"KAFKA_SASL_PASSWORD"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"cardiorisk"`

	RateLimit float64 `env:"RATE_LIMIT" envDefault:"20"`
	RateBurst int     `env:"RATE_BURST" envDefault:"40"`

	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`

	GRPCTLSCertFile string `env:"GRPC_TLS_CERT_FILE"`
	GRPCTLSKeyFile  string `env:"GRPC_TLS_KEY_FILE"`
	GRPCReflection  bool   `env:"GRPC_REFLECTION" envDefault:"false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return finish(&cfg)
}

// LoadFrom reads configuration from the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	if _, err := valueobject.DecisionPolicyFromString(c.DecisionPolicy); err != nil {
		errs = append(errs, err)
	}
	if p := c.StubProbability; p != nil && (*p < 0 || *p > 1) {
		errs = append(errs, fmt.Errorf("MODEL_STUB_PROBABILITY must be within [0, 1], got %v", *p))
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT must not be negative, got %v", c.RateLimit))
	}

	return errors.Join(errs...)
}

// Policy returns the parsed decision policy. Validate has already accepted it.
func (c *Config) Policy() valueobject.DecisionPolicy {
	p, _ := valueobject.DecisionPolicyFromString(c.DecisionPolicy)
	return p
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return ":" + c.GRPCPort
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return ":" + c.HTTPPort
}

// DatabaseEnabled reports whether the reference sample is served from PostgreSQL.
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// KafkaEnabled reports whether prediction events are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// AuthEnabled reports whether the JSON and gRPC APIs require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// TLSEnabled reports whether the gRPC server terminates TLS.
func (c *Config) TLSEnabled() bool {
	return c.GRPCTLSCertFile != ""
}
