package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourorg/itemvault/internal/infrastructure/logger"
	"github.com/yourorg/itemvault/internal/reliability/circuitbreaker"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

// fakeCommands scripts responses for the command subset the cache uses.
type fakeCommands struct {
	getErr   error
	getValue string
	getCalls int
}

func (f *fakeCommands) Get(_ context.Context, _ string) *redis.StringCmd {
	f.getCalls++
	return redis.NewStringResult(f.getValue, f.getErr)
}

func (f *fakeCommands) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCommands) Del(_ context.Context, _ ...string) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func (f *fakeCommands) Ping(_ context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func newTestClient(fake *fakeCommands) *Client {
	log := logger.NewLogger("error")
	return &Client{rdb: fake, breaker: newBreaker(log), logger: log}
}

func TestGetMissesDoNotTripBreaker(t *testing.T) {
	fake := &fakeCommands{getErr: redis.Nil}
	client := newTestClient(fake)

	for i := 0; i < 20; i++ {
		if _, found := client.Get(context.Background(), "items:owner-1"); found {
			t.Fatalf("miss %d reported found", i+1)
		}
	}

	if got := client.breaker.GetState(); got != circuitbreaker.StateClosed {
		t.Fatalf("breaker state = %v after misses, want closed", got)
	}
	if fake.getCalls != 20 {
		t.Fatalf("getCalls = %d, want 20", fake.getCalls)
	}
}

func TestGetHit(t *testing.T) {
	fake := &fakeCommands{getValue: `[{"id":"item-1"}]`}
	client := newTestClient(fake)

	value, found := client.Get(context.Background(), "items:owner-1")
	if !found || string(value) != `[{"id":"item-1"}]` {
		t.Fatalf("Get = %q, %v", value, found)
	}
}

func TestGetTransportErrorsOpenBreaker(t *testing.T) {
	fake := &fakeCommands{getErr: errConnRefused}
	client := newTestClient(fake)

	for i := 0; i < 5; i++ {
		if _, found := client.Get(context.Background(), "items:owner-1"); found {
			t.Fatalf("failure %d reported found", i+1)
		}
	}

	if got := client.breaker.GetState(); got != circuitbreaker.StateOpen {
		t.Fatalf("breaker state = %v after failures, want open", got)
	}

	// Open circuit skips the server entirely
	calls := fake.getCalls
	if _, found := client.Get(context.Background(), "items:owner-1"); found {
		t.Fatal("open breaker reported found")
	}
	if fake.getCalls != calls {
		t.Fatal("command issued while breaker open")
	}
}
