// Package server assembles the HTTP API: routes, middleware chain, and the
// WebSocket endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bkinvest/botboard/internal/domain"
	"github.com/bkinvest/botboard/internal/server/handler"
	"github.com/bkinvest/botboard/internal/server/middleware"
	"github.com/bkinvest/botboard/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// LoginAttempts and LoginWindow throttle the login endpoint per client
	// IP; zero values disable the limiter.
	LoginAttempts int
	LoginWindow   time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health *handler.HealthHandler
	Bots   *handler.BotsHandler
	Auth   *handler.AuthHandler
}

// Server is the HTTP + WebSocket API server for the dashboard.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered. verifier guards
// everything except the health check and login; loginLimiter (optional)
// throttles the login endpoint.
func NewServer(
	cfg Config,
	handlers Handlers,
	wsHub *ws.Hub,
	verifier middleware.SessionVerifier,
	loginLimiter domain.LoginLimiter,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	// Health check and login are reachable without a session.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	var login http.Handler = http.HandlerFunc(handlers.Auth.Login)
	if loginLimiter != nil && cfg.LoginAttempts > 0 {
		login = middleware.LoginRateLimit(loginLimiter, cfg.LoginAttempts, cfg.LoginWindow)(login)
	}
	mux.Handle("POST /api/auth/login", login)
	mux.HandleFunc("POST /api/auth/logout", handlers.Auth.Logout)

	// Report endpoints.
	mux.HandleFunc("GET /api/bots", handlers.Bots.List)
	mux.HandleFunc("GET /api/bots/{id}", handlers.Bots.Get)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux
	h = middleware.SessionAuth(verifier, handler.CookieName,
		"/api/health",
		"/api/auth/login",
	)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
