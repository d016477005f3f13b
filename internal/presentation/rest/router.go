package rest

import (
	"log/slog"
	"net/http"

	"github.com/bibbank/cardiorisk/pkg/auth"
)

// RouterConfig collects the handlers served on the HTTP port.
type RouterConfig struct {
	API    *APIHandler
	Health *HealthHandler
	// Web serves the dashboard pages. Nil serves only the API.
	Web     http.Handler
	Metrics http.Handler
	// JWT protects the prediction endpoint when set. Schema and reference
	// sample reads stay public.
	JWT       *auth.JWTService
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
}

// NewRouter builds the HTTP handler. Health and metrics bypass rate limiting.
func NewRouter(cfg RouterConfig) http.Handler {
	apiMux := http.NewServeMux()
	cfg.API.RegisterRoutes(apiMux)

	var api http.Handler = apiMux
	if cfg.JWT != nil {
		api = AuthMiddleware(cfg.JWT, []string{PathSchema, PathReferenceSample}, auth.PredictRoles...)(api)
	}

	app := http.NewServeMux()
	app.Handle("/api/", api)
	if cfg.Web != nil {
		app.Handle("/", cfg.Web)
	}

	var limited http.Handler = app
	if cfg.RateLimit > 0 {
		limited = PerClientRateLimitMiddleware(NewPerClientRateLimiter(cfg.RateLimit, cfg.RateBurst))(app)
	}

	root := http.NewServeMux()
	cfg.Health.RegisterRoutes(root)
	if cfg.Metrics != nil {
		root.Handle("GET /metrics", cfg.Metrics)
	}
	root.Handle("/", limited)

	return Chain(root, LoggingMiddleware(cfg.Logger))
}
