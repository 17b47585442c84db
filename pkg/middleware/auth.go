package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/contextkeys"
	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/observability"
)

// Authenticator resolves the current user for each inbound request from the
// Authorization header and the session store.
type Authenticator struct {
	codec    *auth.Codec
	sessions *auth.SessionStore
	ttl      time.Duration
	metrics  *observability.Metrics
}

// NewAuthenticator creates the request authenticator. ttl is the sliding
// session lifetime applied on every authenticated request. metrics may be
// nil.
func NewAuthenticator(codec *auth.Codec, sessions *auth.SessionStore, ttl time.Duration, metrics *observability.Metrics) *Authenticator {
	return &Authenticator{
		codec:    codec,
		sessions: sessions,
		ttl:      ttl,
		metrics:  metrics,
	}
}

// Handler wraps an HTTP handler with request authentication.
//
// A missing or empty Authorization header is not an error: the request
// proceeds unauthenticated and the guards decide whether that is acceptable.
// A present token must verify and must map to a live session; a session
// missing server-side means the login was revoked or expired and beats any
// validity the token itself still claims. On success the session TTL is
// extended (sliding expiration) and the user context is attached to the
// request, computed exactly once.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, auth.TokenType))

		subject, err := a.codec.Verify(token)
		if err != nil {
			a.countTokenFailure(err)
			httputil.WriteAuthError(w, err)
			return
		}

		user, err := a.sessions.Get(r.Context(), subject)
		if err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				// Revocation wins over the token's own expiry claim.
				a.countTokenFailure(auth.ErrExpiredCredential)
				httputil.WriteAuthError(w, auth.ErrExpiredCredential)
				return
			}
			observability.FromContext(r.Context()).WithError(err).Error("failed to load session")
			httputil.WriteInternalError(w)
			return
		}

		if err := a.sessions.Refresh(r.Context(), subject, a.ttl); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			observability.FromContext(r.Context()).WithError(err).Warn("failed to refresh session ttl")
		}

		ctx := context.WithValue(r.Context(), contextkeys.CurrentUserKey, user)
		ctx = context.WithValue(ctx, contextkeys.SubjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) countTokenFailure(err error) {
	if a.metrics == nil {
		return
	}
	reason := "invalid"
	if errors.Is(err, auth.ErrExpiredCredential) {
		reason = "expired"
	}
	a.metrics.TokenFailuresTotal.WithLabelValues(reason).Inc()
}

// CurrentUser extracts the resolved user context from the request, or nil
// when the request is unauthenticated.
func CurrentUser(r *http.Request) *auth.UserContext {
	user, _ := r.Context().Value(contextkeys.CurrentUserKey).(*auth.UserContext)
	return user
}

// Subject extracts the session subject from the request, or "" when the
// request is unauthenticated.
func Subject(r *http.Request) string {
	subject, _ := r.Context().Value(contextkeys.SubjectKey).(string)
	return subject
}

// RequireLogin rejects requests that did not resolve a current user.
func (a *Authenticator) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			httputil.WriteAuthError(w, auth.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects requests whose user does not hold the given
// permission code. The super user always passes.
func (a *Authenticator) RequirePermission(code string) func(http.Handler) http.Handler {
	return a.requireAuthority("permission", code)
}

// RequireRole rejects requests whose user does not hold the given role code.
// Role codes live in the same authority namespace as permission codes.
func (a *Authenticator) RequireRole(code string) func(http.Handler) http.Handler {
	return a.requireAuthority("role", code)
}

func (a *Authenticator) requireAuthority(guard, code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				httputil.WriteAuthError(w, auth.ErrUnauthenticated)
				return
			}
			if !user.HasAuthority(code) {
				if a.metrics != nil {
					a.metrics.AccessDeniedTotal.WithLabelValues(guard).Inc()
				}
				httputil.WriteAuthError(w, auth.ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
