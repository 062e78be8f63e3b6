package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLimiterAllowSlidingWindow(t *testing.T) {
	_, client := newClient(t)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := Limiter{Client: client, Prefix: "test:", Now: func() time.Time { return clock }}

	ctx := context.Background()
	window := 2 * time.Second
	limit := 2

	for i := 0; i < limit; i++ {
		d, err := limiter.Allow(ctx, "key", window, limit)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if d.Remaining != limit-(i+1) {
			t.Fatalf("unexpected remaining: %d", d.Remaining)
		}
		clock = clock.Add(500 * time.Millisecond)
	}

	d, err := limiter.Allow(ctx, "key", window, limit)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected third request to be rejected")
	}
	if d.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", d.Remaining)
	}

	// The first two requests fall out of the window; only the rejected one remains.
	clock = clock.Add(window)
	d, err = limiter.Allow(ctx, "key", window, limit)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !d.Allowed {
		t.Fatal("expected request after window to be allowed")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	mr, client := newClient(t)
	limiter := Limiter{Client: client, Prefix: "rl:"}
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "a", time.Minute, 1); !d.Allowed {
		t.Fatal("expected a to be allowed")
	}
	if d, _ := limiter.Allow(ctx, "b", time.Minute, 1); !d.Allowed {
		t.Fatal("expected b to be allowed")
	}
	if ttl := mr.TTL("rl:a"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected key ttl within window, got %v", ttl)
	}
}

func TestLimiterDisabled(t *testing.T) {
	d, err := Limiter{}.Allow(context.Background(), "k", time.Second, 5)
	if err != nil || !d.Allowed || d.Remaining != 5 {
		t.Fatalf("expected nil client to allow, got %+v err=%v", d, err)
	}
}
