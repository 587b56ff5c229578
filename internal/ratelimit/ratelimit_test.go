package ratelimit

import (
	"testing"
	"time"

	"topstore/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(requests, burst int) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	tb := NewTokenBucket(config.RateLimitConfig{Requests: requests, Window: time.Minute, Burst: burst})
	tb.now = clock.now
	return tb, clock
}

func TestTokenBucket_Allow(t *testing.T) {
	tests := []struct {
		name        string
		requests    int
		wantAllowed int
	}{
		{"single request", 1, 1},
		{"within burst", 5, 5},
		{"exceeding burst", 20, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb, _ := newTestBucket(10, 15)
			allowed := 0
			for i := 0; i < tt.requests; i++ {
				if tb.Allow("client") {
					allowed++
				}
			}
			if allowed != tt.wantAllowed {
				t.Errorf("Expected %d allowed, got %d", tt.wantAllowed, allowed)
			}
		})
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	tb, clock := newTestBucket(60, 2)

	tb.Allow("ip")
	tb.Allow("ip")
	if tb.Allow("ip") {
		t.Fatal("Expected bucket to be empty")
	}

	// 60 запросов в минуту - один токен в секунду
	clock.advance(time.Second)
	if !tb.Allow("ip") {
		t.Error("Expected a token after one second")
	}

	if st := tb.Stats("ip"); st.RetryAfter != time.Second {
		t.Errorf("Expected next token in 1s, got %v", st.RetryAfter)
	}

	clock.advance(time.Hour)
	if !tb.Allow("ip") || !tb.Allow("ip") || tb.Allow("ip") {
		t.Error("Expected refill to be capped by burst")
	}
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	tb, _ := newTestBucket(1, 1)

	if !tb.Allow("a") || tb.Allow("a") {
		t.Fatal("Expected one request for key a")
	}
	if !tb.Allow("b") {
		t.Error("Key b must not share the bucket of key a")
	}

	st := tb.Stats("a")
	if st.Allowed != 1 || st.Denied != 1 {
		t.Errorf("Unexpected stats for a: %+v", st)
	}
}

func TestTokenBucket_Cleanup(t *testing.T) {
	tb, clock := newTestBucket(10, 10)
	tb.Allow("old")
	tb.Allow("busy")

	clock.advance(3 * time.Minute)
	tb.cleanup()

	if tb.size() != 0 {
		t.Errorf("Expected idle buckets removed, %d left", tb.size())
	}
}

func TestNewTokenBucket_Defaults(t *testing.T) {
	tb := NewTokenBucket(config.RateLimitConfig{})
	if tb.Limit() != 1 || tb.burst != 1 || tb.window != time.Minute {
		t.Errorf("Unexpected defaults: limit %d burst %d window %v", tb.Limit(), tb.burst, tb.window)
	}
}
