package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
	"github.com/bibbank/cardiorisk/internal/infrastructure/config"
	kafkainfra "github.com/bibbank/cardiorisk/internal/infrastructure/kafka"
	"github.com/bibbank/cardiorisk/internal/infrastructure/memory"
	"github.com/bibbank/cardiorisk/internal/infrastructure/ml"
	postgresinfra "github.com/bibbank/cardiorisk/internal/infrastructure/postgres"
	grpcpresentation "github.com/bibbank/cardiorisk/internal/presentation/grpc"
	"github.com/bibbank/cardiorisk/internal/presentation/rest"
	"github.com/bibbank/cardiorisk/internal/presentation/web"
	"github.com/bibbank/cardiorisk/migrations"
	"github.com/bibbank/cardiorisk/pkg/auth"
	"github.com/bibbank/cardiorisk/pkg/kafka"
	"github.com/bibbank/cardiorisk/pkg/observability"
	"github.com/bibbank/cardiorisk/pkg/postgres"
)

const serviceName = "cardiorisk"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	logger.Info("starting cardiorisk",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"policy", cfg.DecisionPolicy,
	)

	// Tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
		Enabled:     cfg.TracingEnabled,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName:       serviceName,
		RuntimeCollectors: true,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := usecase.NewMetrics(otel.Meter(serviceName))
	if err != nil {
		logger.Error("failed to register instruments", "error", err)
		os.Exit(1)
	}

	// Model and form catalogue.
	fields := catalog.Default()
	predictor := loadPredictor(cfg, fields, logger)

	// Reference sample store.
	referenceRepo, pool, err := openReferenceRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open reference sample store", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	// Prediction events.
	var publisher port.EventPublisher
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(kafkaConfig(cfg))
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = kafkainfra.NewPublisher(producer, cfg.KafkaTopic, logger)
		logger.Info("publishing prediction events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Auth.
	var jwtService *auth.JWTService
	if cfg.AuthEnabled() {
		jwtService, err = auth.NewJWTService(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
		if err != nil {
			logger.Error("failed to initialize JWT service", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("JWT_SECRET not set, prediction APIs are unauthenticated")
	}

	// Use cases.
	predictRisk := usecase.NewPredictRisk(predictor, fields, publisher, metrics, logger)
	describeModel := usecase.NewDescribeModel(predictor)
	getReference := usecase.NewGetReferenceSample(referenceRepo)

	// gRPC server.
	grpcHandler := grpcpresentation.NewCardioRiskHandler(predictRisk, describeModel, fields, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		JWT:         jwtService,
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server: dashboard, JSON API, health and metrics.
	pages, err := web.NewHandler(predictRisk, describeModel, getReference, fields, web.DefaultCopy(), logger)
	if err != nil {
		logger.Error("failed to load page templates", "error", err)
		os.Exit(1)
	}

	checks := map[string]rest.Check{}
	if pool != nil {
		checks["database"] = func(ctx context.Context) error { return postgres.HealthCheck(ctx, pool) }
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			API:       rest.NewAPIHandler(predictRisk, describeModel, getReference, fields, logger),
			Health:    rest.NewHealthHandler(describeModel, checks, logger),
			Web:       pages,
			Metrics:   metricsHandler,
			JWT:       jwtService,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("cardiorisk started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"model_available", predictor.Available(),
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down cardiorisk")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("cardiorisk stopped")
}

// loadPredictor builds the predictor from the configured artifact. A model that
// fails to load leaves the service running with predictions disabled.
func loadPredictor(cfg *config.Config, fields *catalog.Catalog, logger *slog.Logger) *service.Predictor {
	var (
		classifier port.Classifier
		schema     model.Schema
		version    string
	)

	if p := cfg.StubProbability; p != nil {
		logger.Warn("using stub classifier", "probability", *p)
		classifier, schema, version = ml.NewStubClassifier(*p, logger), model.CanonicalSchema, "stub"
	} else {
		m, err := ml.Load(cfg.ModelPath)
		if err != nil {
			logger.Error("model failed to load, predictions disabled", "path", cfg.ModelPath, "error", err)
			return service.NewUnavailablePredictor(err, cfg.Policy())
		}
		classifier, schema, version = m, m.Schema(), m.Version()
	}

	if err := fields.Covers(schema); err != nil {
		logger.Error("model schema is not covered by the form, predictions disabled", "error", err)
		return service.NewUnavailablePredictor(&model.ModelLoadError{Path: cfg.ModelPath, Err: err}, cfg.Policy())
	}

	predictor, err := service.NewPredictor(classifier, schema, cfg.Policy(), version)
	if err != nil {
		logger.Error("failed to build predictor, predictions disabled", "error", err)
		return service.NewUnavailablePredictor(&model.ModelLoadError{Path: cfg.ModelPath, Err: err}, cfg.Policy())
	}

	logger.Info("model loaded",
		"path", cfg.ModelPath,
		"version", version,
		"features", len(schema),
		"policy", predictor.Policy().String(),
	)
	return predictor
}

// openReferenceRepository serves the reference sample from PostgreSQL when a
// database is configured and from memory otherwise. Migrations run on startup.
func openReferenceRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.ReferenceSampleRepository, *pgxpool.Pool, error) {
	if !cfg.DatabaseEnabled() {
		logger.Info("DATABASE_URL not set, serving the bundled reference sample")
		return memory.NewReferenceSampleRepository(nil), nil, nil
	}

	dbCfg := postgres.Config{URL: cfg.DatabaseURL}

	if cfg.MigrationsDir != "" {
		if err := postgres.RunMigrations(dbCfg.DSN(), "file://"+cfg.MigrationsDir); err != nil {
			return nil, nil, err
		}
	} else if err := postgres.RunEmbeddedMigrations(dbCfg.DSN(), migrations.FS, "."); err != nil {
		return nil, nil, err
	}
	logger.Info("database migrations applied")

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := postgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database")

	return postgresinfra.NewReferenceSampleRepository(pool), pool, nil
}

func kafkaConfig(cfg *config.Config) kafka.Config {
	return kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		ClientID:      serviceName,
		WriteTimeout:  5 * time.Second,
		TLS:           cfg.KafkaTLS,
		SASLEnabled:   cfg.KafkaSASLMechanism != "",
		SASLMechanism: cfg.KafkaSASLMechanism,
		SASLUsername:  cfg.KafkaSASLUsername,
		SASLPassword:  cfg.KafkaSASLPassword,
	}
}
