package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bibbank/cardiorisk/internal/application/usecase"
)

const serviceName = "cardiorisk"

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

// HealthHandler provides HTTP health check endpoints for the service.
type HealthHandler struct {
	describeModel *usecase.DescribeModel
	checks        map[string]Check
	logger        *slog.Logger
	startTime     time.Time
}

// NewHealthHandler creates a new health check handler. checks maps a
// dependency name to its probe; a nil map means no external dependencies.
func NewHealthHandler(describeModel *usecase.DescribeModel, checks map[string]Check, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		describeModel: describeModel,
		checks:        checks,
		logger:        logger,
		startTime:     time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.startTime).String(),
	})
}

// Readyz handles readiness probe requests. A missing model leaves the service
// "degraded" but ready, since the pages still render; a failing dependency
// makes it not ready.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Service: serviceName, Checks: map[string]string{}}
	code := http.StatusOK

	if m := h.describeModel.Execute(); m.Available {
		resp.Checks["model"] = "ok"
	} else {
		resp.Checks["model"] = m.LoadError
		resp.Status = "degraded"
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, code, resp)
}
