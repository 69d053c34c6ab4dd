package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/config"
	"github.com/hongminglow/all-in-blog/internal/http/handlers"
	"github.com/hongminglow/all-in-blog/internal/metrics"
	"github.com/hongminglow/all-in-blog/internal/middleware"
	"github.com/hongminglow/all-in-blog/internal/service"
)

// Deps are the long-lived collaborators built by main.
type Deps struct {
	Accounts *service.Accounts
	Posts    *service.Posts
	Sessions *auth.SessionManager
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// Checks are probed by /health.
	Checks map[string]handlers.Pinger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewRouter builds the HTTP handler tree.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(time.Now(), deps.Checks))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions, deps.Logger)
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(deps.Sessions, deps.Logger))
		authHandler.Routes(r)
		postHandler.Routes(r, middleware.RequireIdentity)
	})

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
