package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/itemvault/internal/infrastructure/logger"
	"github.com/yourorg/itemvault/internal/security/auth"
	"github.com/yourorg/itemvault/internal/security/ratelimit"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAuthInjectsClaims(t *testing.T) {
	log := logger.NewLogger("error")
	tm := auth.NewTokenManager("test-secret", "itemvault", time.Hour)
	token, err := tm.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var seenUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := GetClaimsFromContext(r.Context()); claims != nil {
			seenUserID = claims.UserID
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/items", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(tm, log)(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seenUserID != "user-1" {
		t.Fatalf("claims user id = %q", seenUserID)
	}
}

func TestValidateJSONContentType(t *testing.T) {
	log := logger.NewLogger("error")
	wrapped := ValidateJSONContentType(log)(okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json post", "POST", "application/json", `{}`, http.StatusOK},
		{"json with charset", "POST", "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"text post", "POST", "text/plain", "hello", http.StatusUnsupportedMediaType},
		{"bodyless post", "POST", "", "", http.StatusOK},
		{"get ignores content type", "GET", "text/plain", "", http.StatusOK},
		{"put wrong type", "PUT", "application/xml", "<x/>", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/items", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimitCredentialsByAddress(t *testing.T) {
	log := logger.NewLogger("error")
	limiter := ratelimit.NewLimiter(100, time.Minute)
	defer limiter.Stop()

	wrapped := RateLimitCredentials(limiter, 2, time.Minute, log)(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("10.0.0.1:1111"); rec.Code != http.StatusOK {
		t.Fatalf("first request: %d", rec.Code)
	}
	if rec := send("10.0.0.1:2222"); rec.Code != http.StatusOK {
		t.Fatalf("second request: %d", rec.Code)
	}
	rec := send("10.0.0.1:3333")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("429 content type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"rate limit exceeded"}` {
		t.Fatalf("429 body = %s", got)
	}
	// A different address is unaffected
	if rec := send("10.0.0.2:1111"); rec.Code != http.StatusOK {
		t.Fatalf("other address: %d", rec.Code)
	}
}
