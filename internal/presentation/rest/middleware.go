package rest

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bibbank/cardiorisk/pkg/auth"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every HTTP request with method, path, status, duration, and remote address.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// AuthMiddleware validates bearer tokens. Paths in skipPaths bypass
// authentication; roles, when given, restrict access to callers holding one of them.
func AuthMiddleware(jwtService *auth.JWTService, skipPaths []string, roles ...string) Middleware {
	skipSet := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skipSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := skipSet[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !auth.Authorized(claims, roles) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RateLimiter implements a simple token bucket rate limiter.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter refilling rps tokens per second up to burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return newRateLimiter(rps, burst, time.Now)
}

func newRateLimiter(rps float64, burst int, now func() time.Time) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rps,
		lastRefill: now(),
		now:        now,
	}
}

// Allow reports whether a single request is permitted.
// It consumes one token if available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// idle reports whether the bucket has been full for longer than ttl.
func (rl *RateLimiter) idle(ttl time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.now().Sub(rl.lastRefill) > ttl
}

// PerClientRateLimiter keeps one token bucket per client key.
type PerClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*RateLimiter
	rps     float64
	burst   int
	now     func() time.Time
	ttl     time.Duration
	swept   time.Time
}

// NewPerClientRateLimiter creates a limiter giving each client rps requests per second up to burst.
func NewPerClientRateLimiter(rps float64, burst int) *PerClientRateLimiter {
	return &PerClientRateLimiter{
		clients: make(map[string]*RateLimiter),
		rps:     rps,
		burst:   burst,
		now:     time.Now,
		ttl:     10 * time.Minute,
		swept:   time.Now(),
	}
}

// Allow reports whether the client identified by key may make a request.
func (p *PerClientRateLimiter) Allow(key string) bool {
	p.mu.Lock()
	p.sweep()
	rl, ok := p.clients[key]
	if !ok {
		rl = newRateLimiter(p.rps, p.burst, p.now)
		p.clients[key] = rl
	}
	p.mu.Unlock()

	return rl.Allow()
}

// sweep drops buckets idle for longer than ttl. Callers hold p.mu.
func (p *PerClientRateLimiter) sweep() {
	now := p.now()
	if now.Sub(p.swept) < p.ttl {
		return
	}
	for key, rl := range p.clients {
		if rl.idle(p.ttl) {
			delete(p.clients, key)
		}
	}
	p.swept = now
}

// PerClientRateLimitMiddleware rate limits requests by remote IP.
func PerClientRateLimitMiddleware(limiter *PerClientRateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
