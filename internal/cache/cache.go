package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"topstore/internal/interfaces"
	"topstore/internal/model"
)

type cacheEntry struct {
	options   []model.DeliveryOption
	createdAt time.Time
}

// QuoteCache TTL кеш расчетов доставки с ограничением размера.
// Хранит и отдает копии, чтобы вызывающий не мог испортить запись.
type QuoteCache struct {
	entries         map[string]*cacheEntry
	mu              sync.RWMutex
	maxSize         int
	ttl             time.Duration
	now             func() time.Time
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once

	stats struct {
		mu          sync.Mutex
		hits        int64
		misses      int64
		evictions   int64
		expirations int64
	}
}

func NewQuoteCache(maxSize int, ttl time.Duration) interfaces.QuoteCache {
	return newQuoteCache(maxSize, ttl)
}

func newQuoteCache(maxSize int, ttl time.Duration) *QuoteCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	c := &QuoteCache{
		entries:         make(map[string]*cacheEntry),
		maxSize:         maxSize,
		ttl:             ttl,
		now:             time.Now,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go c.startCleanup()
	return c
}

// QuoteKey ключ кеша: город без учета регистра и вес с точностью до 10 г
func QuoteKey(city string, weightKg float64) string {
	return fmt.Sprintf("%s|%.2f", strings.ToLower(strings.TrimSpace(city)), weightKg)
}

func (c *QuoteCache) Get(key string) ([]model.DeliveryOption, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.inc(&c.stats.misses)
		return nil, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.inc(&c.stats.expirations)
		c.inc(&c.stats.misses)
		return nil, false
	}

	c.inc(&c.stats.hits)
	return cloneOptions(entry.options), true
}

func (c *QuoteCache) Set(key string, options []model.DeliveryOption) {
	if key == "" {
		return
	}
	entry := &cacheEntry{options: cloneOptions(options), createdAt: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = entry
}

func (c *QuoteCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QuoteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func (c *QuoteCache) GetStats() interfaces.CacheStats {
	size := c.Size()

	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()

	total := c.stats.hits + c.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.stats.hits) / float64(total) * 100
	}

	return interfaces.CacheStats{
		Size:        size,
		Hits:        c.stats.hits,
		Misses:      c.stats.misses,
		HitRate:     hitRate,
		Evictions:   c.stats.evictions,
		Expirations: c.stats.expirations,
	}
}

// Stop останавливает фоновую очистку, повторный вызов безопасен
func (c *QuoteCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

// evictOldest вызывается под c.mu
func (c *QuoteCache) evictOldest() {
	var (
		oldestKey  string
		oldestTime time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.inc(&c.stats.evictions)
	}
}

func (c *QuoteCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *QuoteCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.ttl {
			delete(c.entries, key)
			c.inc(&c.stats.expirations)
		}
	}
}

func (c *QuoteCache) inc(counter *int64) {
	c.stats.mu.Lock()
	*counter++
	c.stats.mu.Unlock()
}

func cloneOptions(in []model.DeliveryOption) []model.DeliveryOption {
	if in == nil {
		return nil
	}
	out := make([]model.DeliveryOption, len(in))
	copy(out, in)
	return out
}
