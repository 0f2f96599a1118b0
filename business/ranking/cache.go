package ranking

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"shopsense/domain"
)

// ResultCache is a plain key -> payload store with expiry. It is a pure
// performance optimization: a cold cache must produce identical results
// to a warm one, so implementations need no consistency guarantees and
// concurrent writers may simply overwrite each other.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

// Fingerprint derives the cache key for a request from every input that
// affects the result. Two requests with the same fingerprint are
// guaranteed the same result within the TTL window.
func Fingerprint(feature string, rctx domain.RankingContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "f=%s|c=%d|p=%d|q=%s|n=%d|ctx=%s|tier=%s|ind=%s",
		feature,
		rctx.CustomerID,
		rctx.ProductID,
		NormalizeIdentity(rctx.Query),
		rctx.Limit,
		NormalizeIdentity(rctx.ContextTag),
		NormalizeIdentity(rctx.Tier),
		NormalizeIdentity(rctx.Industry),
	)
	if rctx.PriceMin != nil {
		fmt.Fprintf(&b, "|pmin=%g", *rctx.PriceMin)
	}
	if rctx.PriceMax != nil {
		fmt.Fprintf(&b, "|pmax=%g", *rctx.PriceMax)
	}
	fmt.Fprintf(&b, "|oos=%t|intent=%t", rctx.IncludeOutOfStock, rctx.IncludeIntent)

	h := fnv.New64a()
	_, _ = h.Write([]byte(b.String()))

	return fmt.Sprintf("suggest:%s:%x", feature, h.Sum64())
}

// MemoryCache is the in-process ResultCache used in tests and in
// deployments without redis. Expiry is lazy: entries are checked on
// read, there is no background eviction.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
	ttl      time.Duration
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryCacheWithClock injects the time source, so tests can expire
// entries without sleeping.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	// servable iff now < storedAt + ttl
	if !c.now().Before(entry.storedAt.Add(entry.ttl)) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.payload, true
}

func (c *MemoryCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{
		payload:  payload,
		storedAt: c.now(),
		ttl:      ttl,
	}
	c.mu.Unlock()
}

// Len reports live entries, expiring stale ones as it counts.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !c.now().Before(e.storedAt.Add(e.ttl)) {
			delete(c.entries, k)
		}
	}

	return len(c.entries)
}
