package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/proximahq/proxima/pkg/httputil"
)

// LoginRateLimiter throttles login attempts per client address using a
// Redis-backed fixed window, so the limit holds across instances.
type LoginRateLimiter struct {
	redis    *redis.Client
	limit    int
	window   time.Duration
	failOpen bool
}

// NewLoginRateLimiter creates a limiter allowing limit attempts per window
// for each client IP. On Redis errors the limiter fails open: a degraded
// cache must not lock every operator out.
func NewLoginRateLimiter(client *redis.Client, limit int, window time.Duration) *LoginRateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginRateLimiter{
		redis:    client,
		limit:    limit,
		window:   window,
		failOpen: true,
	}
}

// Handler wraps the login handler with the attempt limit.
func (rl *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("proxima:ratelimit:login:%s", clientIP(r))

		pipe := rl.redis.Pipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, rl.window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteInternalError(w)
			return
		}

		if incr.Val() > int64(rl.limit) {
			httputil.WriteErrorMessage(w, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
