package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hongminglow/ledger-be/internal/accounts"
	"github.com/hongminglow/ledger-be/internal/auth"
	"github.com/hongminglow/ledger-be/internal/config"
	"github.com/hongminglow/ledger-be/internal/http/handlers"
	"github.com/hongminglow/ledger-be/internal/ledger"
	"github.com/hongminglow/ledger-be/internal/middleware"
	"github.com/hongminglow/ledger-be/internal/ratelimit"
	"github.com/hongminglow/ledger-be/internal/storage"
)

// Deps are the collaborators the HTTP layer routes into.
type Deps struct {
	Users    storage.UserStore
	Accounts *accounts.Service
	Ledger   *ledger.Engine
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler builds the full middleware chain over the route table.
func Handler(cfg config.Config, deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.New(nil, "", 0, 0, logger)
	}

	mux := http.NewServeMux()
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := func(next http.Handler) http.Handler { return middleware.Authenticate(tokenManager, next) }
	throttle := func(next http.Handler) http.Handler { return middleware.RateLimit(limiter, next) }

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(deps.Users, tokenManager, logger).Register(mux)
	handlers.NewAccountHandler(deps.Accounts, logger).Register(mux, authn)
	handlers.NewTransactionHandler(deps.Accounts, deps.Ledger, logger).Register(mux, authn, throttle)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, middleware.Metrics(mux)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
