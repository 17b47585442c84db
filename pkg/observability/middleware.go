package observability

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/proximahq/proxima/pkg/contextkeys"
)

// RequestMiddleware stamps every request with a generated id, injects a
// request-scoped logger carrying it, and logs the request outcome.
func RequestMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()

			reqLogger := logger.WithField("request_id", requestID)
			ctx := context.WithValue(r.Context(), contextkeys.RequestIDKey, requestID)
			ctx = WithLogger(ctx, reqLogger)

			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			reqLogger.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rw.status,
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}

// RecoveryMiddleware recovers from handler panics, logs the stack, and
// returns a bare 500. The panic never reaches the connection handler.
func RecoveryMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithField("panic", rec).
						WithField("stack", string(debug.Stack())).
						WithField("path", r.URL.Path).
						Error("PANIC recovered in handler")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"code":1,"msg":"internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
