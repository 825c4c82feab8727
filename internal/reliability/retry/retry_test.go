package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/itemvault/internal/infrastructure/logger"
)

func fastConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestSucceedsAfterTransientFailures(t *testing.T) {
	log := logger.NewLogger("error")

	attempts := 0
	result, err := Do(context.Background(), fastConfig(), log, "ping", func(_ context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "pong", nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if result != "pong" || attempts != 3 {
		t.Fatalf("result = %q after %d attempts", result, attempts)
	}
}

func TestExhaustsAttempts(t *testing.T) {
	log := logger.NewLogger("error")

	errBoom := errors.New("boom")
	attempts := 0
	_, err := Do(context.Background(), fastConfig(), log, "ping", func(_ context.Context) (int, error) {
		attempts++
		return 0, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want wrapped %v", err, errBoom)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestStopsOnCanceledContext(t *testing.T) {
	log := logger.NewLogger("error")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := Do(ctx, fastConfig(), log, "ping", func(_ context.Context) (int, error) {
		attempts++
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 0 {
		t.Fatalf("attempts = %d, want 0", attempts)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := &Config{
		InitialBackoff:    time.Second,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 10,
	}
	if got := calculateBackoff(3, cfg); got != 2*time.Second {
		t.Fatalf("backoff = %v, want cap %v", got, 2*time.Second)
	}
}
