package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/presentation/rest"
	"github.com/bibbank/cardiorisk/pkg/observability"
)

func readyz(t *testing.T, predictor *service.Predictor, checks map[string]rest.Check) (int, rest.ReadinessResponse) {
	t.Helper()
	h := rest.NewHealthHandler(usecase.NewDescribeModel(predictor), checks, observability.Discard())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp rest.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthz(t *testing.T) {
	h := rest.NewHealthHandler(usecase.NewDescribeModel(unavailablePredictor()), nil, observability.Discard())

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rest.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "cardiorisk", resp.Service)
}

func TestReadyz(t *testing.T) {
	t.Run("model loaded and database reachable", func(t *testing.T) {
		code, resp := readyz(t, stubPredictor(t, 0.2), map[string]rest.Check{
			"database": func(context.Context) error { return nil },
		})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"model": "ok", "database": "ok"}, resp.Checks)
	})

	t.Run("missing model is degraded but ready", func(t *testing.T) {
		code, resp := readyz(t, unavailablePredictor(), nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Contains(t, resp.Checks["model"], "models/missing.json")
	})

	t.Run("failing database is not ready", func(t *testing.T) {
		code, resp := readyz(t, stubPredictor(t, 0.2), map[string]rest.Check{
			"database": func(context.Context) error { return errors.New("connection refused") },
		})
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["database"])
	})
}
