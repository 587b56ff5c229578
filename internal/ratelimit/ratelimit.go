package ratelimit

import (
	"context"
	"sync"
	"time"

	"topstore/internal/config"
)

// Stats статистика по ключу
type Stats struct {
	Allowed   int64
	Denied    int64
	Remaining int
	ResetTime time.Time
	// RetryAfter через сколько появится следующий токен
	RetryAfter time.Duration
}

// TokenBucket token bucket на каждый ключ (IP клиента).
// Requests токенов пополняются за Window, запас не больше Burst.
type TokenBucket struct {
	requests    int
	window      time.Duration
	burst       int
	buckets     map[string]*bucket
	mutex       sync.Mutex
	cleanupTick time.Duration
	now         func() time.Time
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
	allowed    int64
	denied     int64
}

func NewTokenBucket(cfg config.RateLimitConfig) *TokenBucket {
	if cfg.Requests <= 0 {
		cfg.Requests = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Requests
	}

	return &TokenBucket{
		requests:    cfg.Requests,
		window:      cfg.Window,
		burst:       cfg.Burst,
		buckets:     make(map[string]*bucket),
		cleanupTick: 5 * time.Minute,
		now:         time.Now,
	}
}

// Allow забирает токен, если он есть
func (tb *TokenBucket) Allow(key string) bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := tb.now()
	b := tb.getOrCreateBucket(key, now)
	tb.refill(b, now)

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		b.allowed++
		return true
	}
	b.denied++
	return false
}

// Limit число запросов за окно
func (tb *TokenBucket) Limit() int {
	return tb.requests
}

func (tb *TokenBucket) Stats(key string) Stats {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	b, exists := tb.buckets[key]
	if !exists {
		return Stats{Remaining: tb.burst}
	}

	// время до полного восполнения запаса
	missing := float64(tb.burst) - b.tokens
	refill := time.Duration(missing / float64(tb.requests) * float64(tb.window))

	st := Stats{
		Allowed:   b.allowed,
		Denied:    b.denied,
		Remaining: int(b.tokens),
		ResetTime: b.lastRefill.Add(refill),
	}
	if b.tokens < 1.0 {
		st.RetryAfter = time.Duration((1.0 - b.tokens) / float64(tb.requests) * float64(tb.window))
	}
	return st
}

func (tb *TokenBucket) getOrCreateBucket(key string, now time.Time) *bucket {
	if b, exists := tb.buckets[key]; exists {
		return b
	}
	b := &bucket{
		tokens:     float64(tb.burst),
		lastRefill: now,
	}
	tb.buckets[key] = b
	return b
}

func (tb *TokenBucket) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}

	b.tokens += float64(elapsed) / float64(tb.window) * float64(tb.requests)
	if b.tokens > float64(tb.burst) {
		b.tokens = float64(tb.burst)
	}
	b.lastRefill = now
}

// StartCleanup периодически удаляет восполненные buckets
func (tb *TokenBucket) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(tb.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tb.cleanup()
		}
	}
}

func (tb *TokenBucket) cleanup() {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	// полный bucket ничем не отличается от нового
	now := tb.now()
	for key, b := range tb.buckets {
		tb.refill(b, now)
		if b.tokens >= float64(tb.burst) {
			delete(tb.buckets, key)
		}
	}
}

func (tb *TokenBucket) size() int {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()
	return len(tb.buckets)
}
