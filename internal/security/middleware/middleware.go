package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yourorg/itemvault/internal/security/auth"
)

// ClaimsContextKey keys the verified token claims in a request context
type ClaimsContextKey struct{}

// RequireAuth is the authorization guard: it rejects any request without a
// well-formed "Bearer <token>" Authorization header carrying a verifiable
// token, and attaches the decoded claims to the request context. Every item
// route is wrapped in it; it is never optional.
func RequireAuth(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.ExtractToken(r.Header.Get("Authorization"))
			if err != nil {
				writeUnauthorized(w, "Missing token")
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				writeUnauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext returns the verified claims, or nil outside the guard
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, msg)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
