package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "itemvault", time.Hour)

	token, err := tm.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenExpiryWindow(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issued

	tm := NewTokenManager("secret", "itemvault", time.Hour).
		WithClock(func() time.Time { return now })

	token, err := tm.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	now = issued.Add(59 * time.Minute)
	if _, err := tm.Validate(token); err != nil {
		t.Fatalf("token rejected at T+59m: %v", err)
	}

	now = issued.Add(61 * time.Minute)
	if _, err := tm.Validate(token); err == nil {
		t.Fatalf("token accepted at T+61m")
	}
}

func TestTokenRejection(t *testing.T) {
	tm := NewTokenManager("secret", "itemvault", time.Hour)
	other := NewTokenManager("other-secret", "itemvault", time.Hour)

	token, err := tm.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// Wrong key
	if _, err := other.Validate(token); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}

	// Tampered payload
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx." + parts[2]
	if _, err := tm.Validate(tampered); err == nil {
		t.Fatalf("tampered token accepted")
	}

	// Not a token at all
	if _, err := tm.Validate("garbage"); err == nil {
		t.Fatalf("garbage accepted")
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"missing", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"lowercase scheme", "bearer abc", "", true},
		{"no token", "Bearer ", "", true},
		{"extra parts", "Bearer abc def", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
