package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yourorg/itemvault/internal/security/ratelimit"
)

// RateLimitByUser limits authenticated traffic per user id. It must sit
// inside RequireAuth so the claims are available.
func RateLimitByUser(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.UserID
			}

			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("user_id", key))
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitCredentials applies a strict per-address limit to login and
// register, damping brute-force attempts.
func RateLimitCredentials(limiter *ratelimit.Limiter, maxReqs int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !limiter.AllowStrict(host, maxReqs, window) {
				log.Warn("credential rate limit exceeded", slog.String("addr", host))
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
