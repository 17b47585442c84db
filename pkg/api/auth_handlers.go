package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/middleware"
	"github.com/proximahq/proxima/pkg/observability"
)

// AuthHandlers serves login, logout and the current-user endpoint.
type AuthHandlers struct {
	service *auth.Service
	metrics *observability.Metrics
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(service *auth.Service, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{service: service, metrics: metrics}
}

// RegisterRoutes mounts the auth routes. Login sits behind the rate limiter;
// logout and me require an established session.
func (h *AuthHandlers) RegisterRoutes(r *mux.Router, authn *middleware.Authenticator, limiter *middleware.LoginRateLimiter) {
	r.Handle("/api/login", limiter.Handler(http.HandlerFunc(h.login))).Methods("POST")
	r.Handle("/api/logout", authn.RequireLogin(http.HandlerFunc(h.logout))).Methods("POST")
	r.Handle("/api/me", authn.RequireLogin(http.HandlerFunc(h.me))).Methods("GET")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "email and password are required")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		httputil.WriteAuthError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues("success").Inc()
		h.metrics.SessionsCreated.Inc()
	}
	httputil.WriteSuccess(w, token)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.Subject(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsRevoked.Inc()
	}
	httputil.WriteSuccess(w, nil)
}

func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, middleware.CurrentUser(r))
}
