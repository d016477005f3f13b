package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
	"github.com/bibbank/cardiorisk/internal/infrastructure/memory"
	"github.com/bibbank/cardiorisk/internal/infrastructure/ml"
	"github.com/bibbank/cardiorisk/internal/presentation/rest"
	"github.com/bibbank/cardiorisk/pkg/auth"
	"github.com/bibbank/cardiorisk/pkg/observability"
	"github.com/bibbank/cardiorisk/pkg/testutil"
)

type failingRepository struct{}

func (failingRepository) List(context.Context) ([]model.ReferenceRecord, error) {
	return nil, errors.New("connection refused")
}

func stubPredictor(t *testing.T, p float64) *service.Predictor {
	t.Helper()
	predictor, err := service.NewPredictor(ml.NewStubClassifier(p, observability.Discard()), model.CanonicalSchema, valueobject.PolicyThreshold, "stub-v1")
	require.NoError(t, err)
	return predictor
}

func unavailablePredictor() *service.Predictor {
	return service.NewUnavailablePredictor(
		&model.ModelLoadError{Path: "models/missing.json", Err: errors.New("no such file or directory")},
		valueobject.PolicyThreshold,
	)
}

func newRouter(t *testing.T, predictor *service.Predictor, opts ...func(*rest.RouterConfig)) http.Handler {
	t.Helper()
	logger := observability.Discard()
	describe := usecase.NewDescribeModel(predictor)

	cfg := rest.RouterConfig{
		API: rest.NewAPIHandler(
			usecase.NewPredictRisk(predictor, catalog.Default(), nil, nil, logger),
			describe,
			usecase.NewGetReferenceSample(memory.NewReferenceSampleRepository(nil)),
			catalog.Default(),
			logger,
		),
		Health: rest.NewHealthHandler(describe, nil, logger),
		Logger: logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return rest.NewRouter(cfg)
}

func postPrediction(t *testing.T, h http.Handler, inputs map[string]any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(dto.PredictRequest{Inputs: inputs})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, rest.PathPredictions, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Predict(t *testing.T) {
	h := newRouter(t, stubPredictor(t, 0.73))

	rec := postPrediction(t, h, testutil.PatientForm(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp dto.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "73.00", resp.Percent)
	assert.Equal(t, "Probability of cardiovascular disease: 73.00%", resp.Display)
	assert.True(t, resp.HighRisk)
	assert.Equal(t, dto.MessageHighRisk, resp.Message)
}

func TestAPI_PredictErrors(t *testing.T) {
	outOfRange := testutil.PatientForm()
	outOfRange["chol"] = 900

	missing := testutil.PatientForm()
	delete(missing, "thalach")

	badGender := testutil.PatientForm()
	badGender["sex"] = "other"

	tests := []struct {
		name      string
		predictor *service.Predictor
		inputs    map[string]any
		code      int
		reason    string
	}{
		{"empty inputs", stubPredictor(t, 0.2), map[string]any{}, http.StatusBadRequest, ""},
		{"out of range", stubPredictor(t, 0.2), outOfRange, http.StatusUnprocessableEntity, "out_of_range"},
		{"missing feature", stubPredictor(t, 0.2), missing, http.StatusUnprocessableEntity, "schema_mismatch"},
		{"unknown gender", stubPredictor(t, 0.2), badGender, http.StatusUnprocessableEntity, "invalid_value"},
		{"model not loaded", unavailablePredictor(), testutil.PatientForm(), http.StatusServiceUnavailable, "model_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postPrediction(t, newRouter(t, tt.predictor), tt.inputs, nil)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())

			var resp rest.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.reason, resp.Reason)
		})
	}
}

func TestAPI_PredictMalformedBody(t *testing.T) {
	h := newRouter(t, stubPredictor(t, 0.2))

	req := httptest.NewRequest(http.MethodPost, rest.PathPredictions, bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, rest.PathPredictions, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAPI_Schema(t *testing.T) {
	h := newRouter(t, unavailablePredictor())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rest.PathSchema, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rest.SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Model.Available)
	assert.Contains(t, resp.Model.LoadError, "models/missing.json")
	assert.Len(t, resp.Fields, 13)
}

func TestAPI_ReferenceSample(t *testing.T) {
	h := newRouter(t, stubPredictor(t, 0.2))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rest.PathReferenceSample, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReferenceSampleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Records, 14)
	assert.InDelta(t, 56.143, resp.Means.Age, 0.001)
}

func TestAPI_ReferenceSampleFailure(t *testing.T) {
	predictor := stubPredictor(t, 0.2)
	h := newRouter(t, predictor, func(cfg *rest.RouterConfig) {
		logger := observability.Discard()
		cfg.API = rest.NewAPIHandler(
			usecase.NewPredictRisk(predictor, nil, nil, nil, logger),
			usecase.NewDescribeModel(predictor),
			usecase.NewGetReferenceSample(failingRepository{}),
			catalog.Default(),
			logger,
		)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rest.PathReferenceSample, nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRouter_AuthProtectsPredictionsOnly(t *testing.T) {
	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test-secret", Issuer: "cardiorisk-test"})
	require.NoError(t, err)

	h := newRouter(t, stubPredictor(t, 0.2), func(cfg *rest.RouterConfig) { cfg.JWT = jwt })

	rec := postPrediction(t, h, testutil.PatientForm(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.GenerateToken("ward-7", []string{auth.RoleClinician})
	require.NoError(t, err)
	rec = postPrediction(t, h, testutil.PatientForm(), http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{rest.PathSchema, rest.PathReferenceSample, "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_RateLimitSparesHealth(t *testing.T) {
	h := newRouter(t, stubPredictor(t, 0.2), func(cfg *rest.RouterConfig) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
	})

	get := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get(rest.PathSchema))
	assert.Equal(t, http.StatusTooManyRequests, get(rest.PathSchema))
	assert.Equal(t, http.StatusOK, get("/healthz"))
}
