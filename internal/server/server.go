package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonathan/job-board/internal/config"
	"github.com/jonathan/job-board/internal/metrics"
	"github.com/jonathan/job-board/internal/server/middleware"
	"github.com/jonathan/job-board/internal/server/ratelimit"
	"github.com/jonathan/job-board/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight requests get after Run's context ends.
const shutdownTimeout = 30 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	board       JobBoard
	health      Pinger
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	corsOrigin  string
	log         *zap.SugaredLogger
}

// Config holds the server's collaborators and tunables.
type Config struct {
	HTTP     config.HTTP
	JWT      *config.JWTConfig
	Password *config.PasswordConfig

	Board   JobBoard
	Users   UserStore
	Health  Pinger
	Limiter *ratelimit.Limiter // nil disables rate limiting
	Logger  *zap.SugaredLogger
}

// New creates a new server instance
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{
		board:       cfg.Board,
		health:      cfg.Health,
		rateLimiter: cfg.Limiter,
		corsOrigin:  cfg.HTTP.CORSOrigin,
		log:         log,
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}

	s.jwtService = NewJWTService(cfg.JWT)
	s.authHandler = NewAuthHandler(NewUserService(cfg.Users, cfg.Password), s.jwtService, log)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	tokens := s.jwtService.AsTokenValidator()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Accounts
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", middleware.AuthMiddleware(tokens)(http.HandlerFunc(s.authHandler.Me)))

	// Public listings and directory
	mux.HandleFunc("GET /jobs", s.handleGetJobListings)
	mux.HandleFunc("GET /jobs/{slug}", s.handleGetPublicJob)
	mux.HandleFunc("GET /jobs/{slug}/similar", s.handleGetSimilarJobs)
	mux.HandleFunc("GET /companies", s.handleListCompanies)
	mux.HandleFunc("GET /companies/{slug}", s.handleGetPublicCompany)

	// Owner-scoped profile. The service rejects anonymous callers itself so
	// the unauthorized body matches every other operation result.
	mux.HandleFunc("GET /profile/company", s.handleGetCompanyInfo)
	mux.HandleFunc("PUT /profile/company", s.handleSaveCompanyInfo)
	mux.HandleFunc("GET /profile/jobs", s.handleGetCompanyJobs)
	mux.HandleFunc("POST /profile/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /profile/jobs/{slug}", s.handleGetOwnJob)
	mux.HandleFunc("PUT /profile/jobs/{slug}", s.handleUpdateJob)

	var h http.Handler = mux
	h = s.withRateLimit(h)
	h = middleware.OptionalAuth(tokens)(h)
	h = s.withCORS(h)
	h = s.withLogging(h)
	h = chimw.Recoverer(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Infow("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit meters requests by route tier. It runs inside OptionalAuth
// so signed-in callers are limited per account on profile routes.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := ratelimit.Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			ClientIP: s.extractClientID(r),
		}
		if userID, err := middleware.GetUserID(r); err == nil {
			req.Account = userID.String()
		}

		info := s.rateLimiter.Allow(req)
		s.setRateLimitHeaders(w, info)

		if !info.Allowed {
			metrics.RateLimitedTotal.WithLabelValues(string(info.Tier)).Inc()
			s.log.Warnw("rate limit exceeded",
				"client", req.ClientIP,
				"account", req.Account,
				"tier", info.Tier,
				"path", req.Path,
				"limit", info.Limit,
			)
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging and HTTP metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.log.Warnw("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.S().Warnw("failed to encode JSON response", "error", err)
	}
}

// writeError writes a failed result with message
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.Result{Success: false, Error: message})
}

// extractClientID extracts the client identifier from the request.
// RealIP has already replaced RemoteAddr with the forwarded address when present.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(info.RetryAfter.Seconds()))))
	}
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
