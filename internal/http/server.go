// Package http exposes the mortgage planner as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mortgages/internal/services"
)

// Pinger is anything whose connectivity the readiness probe should verify.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	mortgages    *services.MortgageService
	planner      *services.PlannerService
	rateLimiter  *rateLimiter
	readiness    []Pinger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, mortgages *services.MortgageService, planner *services.PlannerService, readiness ...Pinger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		mortgages:   mortgages,
		planner:     planner,
		rateLimiter: newRateLimiter(),
		readiness:   readiness,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/mortgages", s.withMiddleware(s.handleListMortgages))
	mux.HandleFunc("POST /api/mortgages", s.withMiddleware(s.handleCreateMortgage))
	mux.HandleFunc("GET /api/mortgages/{id}", s.withMiddleware(s.handleGetMortgage))
	mux.HandleFunc("PUT /api/mortgages/{id}", s.withMiddleware(s.handleUpdateMortgage))
	mux.HandleFunc("DELETE /api/mortgages/{id}", s.withMiddleware(s.handleDeleteMortgage))

	mux.HandleFunc("GET /api/mortgages/{id}/scenarios", s.withMiddleware(s.handleListScenarios))
	mux.HandleFunc("POST /api/mortgages/{id}/scenarios", s.withMiddleware(s.handleCreateScenario))
	mux.HandleFunc("GET /api/scenarios/{id}", s.withMiddleware(s.handleGetScenario))
	mux.HandleFunc("PUT /api/scenarios/{id}", s.withMiddleware(s.handleUpdateScenario))
	mux.HandleFunc("DELETE /api/scenarios/{id}", s.withMiddleware(s.handleDeleteScenario))

	mux.HandleFunc("GET /api/mortgages/{id}/schedule", s.withMiddleware(s.handleMortgageSchedule))
	mux.HandleFunc("GET /api/mortgages/{id}/comparison", s.withMiddleware(s.handleComparison))
	mux.HandleFunc("GET /api/distribution", s.withMiddleware(s.handleStoredDistribution))
	mux.HandleFunc("POST /api/calculate/schedule", s.withMiddleware(s.handleCalculateSchedule))
	mux.HandleFunc("POST /api/calculate/distribution", s.withMiddleware(s.handleCalculateDistribution))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutating requests only
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
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

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, p := range s.readiness {
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
