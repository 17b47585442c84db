package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/middleware"
	"github.com/proximahq/proxima/pkg/observability"
	"github.com/proximahq/proxima/pkg/storage"
)

// ServerConfig carries everything the HTTP surface depends on.
type ServerConfig struct {
	AuthService      *auth.Service
	UserService      *manage.UserService
	RoleService      *manage.RoleService
	AuthorityService *manage.AuthorityService
	FileService      *storage.FileService

	Authenticator *middleware.Authenticator
	LoginLimiter  *middleware.LoginRateLimiter
	Health        *observability.HealthChecker
	Metrics       *observability.Metrics
	Logger        *observability.Logger

	MaxUploadSize int64
}

// Server owns the router and the registered handlers.
type Server struct {
	router  *mux.Router
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewServer wires the handlers onto a router behind the middleware chain.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}

	s.router.Use(observability.RequestMiddleware(cfg.Logger))
	s.router.Use(observability.RecoveryMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		s.router.Use(s.instrument)
	}
	s.router.Use(cfg.Authenticator.Handler)

	NewAuthHandlers(cfg.AuthService, cfg.Metrics).RegisterRoutes(s.router, cfg.Authenticator, cfg.LoginLimiter)
	NewUserHandlers(cfg.UserService).RegisterRoutes(s.router, cfg.Authenticator)
	NewRoleHandlers(cfg.RoleService).RegisterRoutes(s.router, cfg.Authenticator)
	NewAuthorityHandlers(cfg.AuthorityService).RegisterRoutes(s.router, cfg.Authenticator)
	NewFileHandlers(cfg.FileService, cfg.Metrics, cfg.MaxUploadSize).RegisterRoutes(s.router, cfg.Authenticator)

	if cfg.Health != nil {
		s.router.HandleFunc("/healthz", cfg.Health.Liveness).Methods("GET")
		s.router.HandleFunc("/readyz", cfg.Health.Readiness).Methods("GET")
	}
	if cfg.Metrics != nil {
		s.router.Handle("/metrics", cfg.Metrics.Handler()).Methods("GET")
	}

	return s
}

// Router exposes the assembled router for the HTTP server and for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// instrument records request metrics under the route template, keeping label
// cardinality bounded when paths carry ids.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		s.metrics.InstrumentHandler(path, next).ServeHTTP(w, r)
	})
}
