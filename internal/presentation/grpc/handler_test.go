package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/client"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
	"github.com/bibbank/cardiorisk/internal/infrastructure/ml"
	cardiogrpc "github.com/bibbank/cardiorisk/internal/presentation/grpc"
	"github.com/bibbank/cardiorisk/pkg/auth"
	"github.com/bibbank/cardiorisk/pkg/observability"
	"github.com/bibbank/cardiorisk/pkg/testutil"
)

func newHandler(t *testing.T, predictor *service.Predictor) *cardiogrpc.CardioRiskHandler {
	t.Helper()
	logger := observability.Discard()
	return cardiogrpc.NewCardioRiskHandler(
		usecase.NewPredictRisk(predictor, catalog.Default(), nil, nil, logger),
		usecase.NewDescribeModel(predictor),
		catalog.Default(),
		logger,
	)
}

func stubPredictor(t *testing.T, p float64) *service.Predictor {
	t.Helper()
	predictor, err := service.NewPredictor(ml.NewStubClassifier(p, observability.Discard()), model.CanonicalSchema, valueobject.PolicyThreshold, "stub-v1")
	require.NoError(t, err)
	return predictor
}

func unavailablePredictor() *service.Predictor {
	return service.NewUnavailablePredictor(
		&model.ModelLoadError{Path: "models/missing.json", Err: assert.AnError},
		valueobject.PolicyThreshold,
	)
}

func TestCardioRiskHandler_Predict(t *testing.T) {
	h := newHandler(t, stubPredictor(t, 0.73))

	resp, err := h.Predict(context.Background(), &cardiogrpc.PredictRequest{Inputs: testutil.PatientForm()})
	require.NoError(t, err)

	assert.Equal(t, "73.00", resp.Percent)
	assert.Equal(t, "HIGH", resp.RiskLabel)
	assert.True(t, resp.HighRisk)
	assert.Equal(t, "stub-v1", resp.ModelVersion)
	assert.NotEmpty(t, resp.ID)

	require.NotNil(t, resp.PredictedAt)
	assert.WithinDuration(t, time.Now(), resp.PredictedAt.AsTime(), time.Minute)
}

func TestCardioRiskHandler_PredictStatusCodes(t *testing.T) {
	outOfRange := testutil.PatientForm()
	outOfRange["age"] = 130

	missing := testutil.PatientForm()
	delete(missing, "oldpeak")

	badGender := testutil.PatientForm()
	badGender["sex"] = "unknown"

	tests := []struct {
		name      string
		predictor *service.Predictor
		inputs    map[string]any
		code      codes.Code
	}{
		{"empty inputs", stubPredictor(t, 0.2), nil, codes.InvalidArgument},
		{"out of range", stubPredictor(t, 0.2), outOfRange, codes.InvalidArgument},
		{"missing feature", stubPredictor(t, 0.2), missing, codes.InvalidArgument},
		{"unknown gender", stubPredictor(t, 0.2), badGender, codes.InvalidArgument},
		{"model not loaded", unavailablePredictor(), testutil.PatientForm(), codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, tt.predictor)
			_, err := h.Predict(context.Background(), &cardiogrpc.PredictRequest{Inputs: tt.inputs})
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestCardioRiskHandler_GetSchema(t *testing.T) {
	h := newHandler(t, stubPredictor(t, 0.2))

	resp, err := h.GetSchema(context.Background(), &cardiogrpc.GetSchemaRequest{})
	require.NoError(t, err)

	assert.True(t, resp.Available)
	assert.Equal(t, []string(model.CanonicalSchema), resp.Features)
	assert.Equal(t, "threshold", resp.Policy)
	require.Len(t, resp.Fields, len(catalog.Default().Fields()))
	assert.Equal(t, "age", resp.Fields[0].Name)

	var sex cardiogrpc.FieldMsg
	for _, f := range resp.Fields {
		if f.Name == "sex" {
			sex = f
		}
	}
	require.Len(t, sex.Options, 2)
}

func TestCardioRiskHandler_GetSchemaWhenUnavailable(t *testing.T) {
	h := newHandler(t, unavailablePredictor())

	resp, err := h.GetSchema(context.Background(), &cardiogrpc.GetSchemaRequest{})
	require.NoError(t, err)

	assert.False(t, resp.Available)
	assert.Empty(t, resp.Features)
	assert.Contains(t, resp.LoadError, "models/missing.json")
	assert.NotEmpty(t, resp.Fields, "the form is still described without a model")
}

// startServer runs the full server on an in-memory listener and returns a
// client dialled through it.
func startServer(t *testing.T, predictor *service.Predictor, jwt *auth.JWTService, token string) *client.Client {
	t.Helper()

	srv, err := cardiogrpc.NewServer(newHandler(t, predictor), cardiogrpc.ServerConfig{JWT: jwt}, observability.Discard())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := client.Dial(client.Config{
		Address: "passthrough:///bufnet",
		Token:   token,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	}, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestServer_EndToEnd(t *testing.T) {
	c := startServer(t, stubPredictor(t, 0.5), nil, "")
	ctx := context.Background()

	require.NoError(t, c.CheckHealth(ctx))

	resp, err := c.Predict(ctx, testutil.PatientForm())
	require.NoError(t, err)
	assert.Equal(t, "50.00", resp.Percent)
	assert.False(t, resp.HighRisk, "exactly fifty percent is low risk")
	assert.Equal(t, "Low risk of cardiovascular disease!", resp.Message)

	schema, err := c.GetSchema(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stub-v1", schema.ModelVersion)

	bad := testutil.PatientForm()
	bad["cp"] = 9
	_, err = c.Predict(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_Auth(t *testing.T) {
	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "grpc-test-secret", Issuer: "cardiorisk-test"})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("missing token is rejected", func(t *testing.T) {
		c := startServer(t, stubPredictor(t, 0.2), jwt, "")
		_, err := c.Predict(ctx, testutil.PatientForm())
		assert.Equal(t, codes.Unauthenticated, status.Code(err))

		// Schema and health stay open.
		_, err = c.GetSchema(ctx)
		assert.NoError(t, err)
		assert.NoError(t, c.CheckHealth(ctx))
	})

	t.Run("token without a prediction role is denied", func(t *testing.T) {
		token, err := jwt.GenerateToken("auditor", []string{"auditor"})
		require.NoError(t, err)

		c := startServer(t, stubPredictor(t, 0.2), jwt, token)
		_, err = c.Predict(ctx, testutil.PatientForm())
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("clinician token is accepted", func(t *testing.T) {
		token, err := jwt.GenerateToken("ward-7", []string{auth.RoleClinician})
		require.NoError(t, err)

		c := startServer(t, stubPredictor(t, 0.2), jwt, token)
		resp, err := c.Predict(ctx, testutil.PatientForm())
		require.NoError(t, err)
		assert.Equal(t, "LOW", resp.RiskLabel)
	})
}

func TestServer_SetServing(t *testing.T) {
	srv, err := cardiogrpc.NewServer(newHandler(t, stubPredictor(t, 0.2)), cardiogrpc.ServerConfig{}, observability.Discard())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := client.Dial(client.Config{
		Address: "passthrough:///bufnet",
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	}, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	srv.SetServing(false)
	assert.Error(t, c.CheckHealth(context.Background()))

	srv.SetServing(true)
	assert.NoError(t, c.CheckHealth(context.Background()))
}
