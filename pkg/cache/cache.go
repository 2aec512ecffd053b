package cache

import (
	"sync"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// DefaultTypeTTLs returns the default per-type maximum ages. The
// volatility of the underlying domain drives the number, not
// correctness: a stale market read is misleading sooner than a stale
// sentiment read.
func DefaultTypeTTLs() map[analyzer.AnalysisType]time.Duration {
	return map[analyzer.AnalysisType]time.Duration{
		analyzer.TypeProposal:    5 * time.Minute,
		analyzer.TypeSentiment:   30 * time.Minute,
		analyzer.TypeMarket:      2 * time.Minute,
		analyzer.TypeTransaction: 10 * time.Minute,
		analyzer.TypeRisk:        15 * time.Minute,
	}
}

// DefaultTTL is the type TTL applied when no per-type entry exists.
const DefaultTTL = 10 * time.Minute

// entry is a stored result plus bookkeeping for LRU eviction.
type entry struct {
	result         *analyzer.AnalysisResult
	analysisType   analyzer.AnalysisType
	storedAt       time.Time
	expiresAt      time.Time
	lastAccessedAt time.Time
}

// Config contains cache configuration.
type Config struct {
	// Enabled controls whether the cache stores anything at all.
	Enabled bool

	// TTL is the store-level entry lifetime. Entries are swept in the
	// background once it elapses. Zero applies a 1 hour default.
	TTL time.Duration

	// MaxEntries caps the store size; the least recently accessed
	// entry is evicted at capacity. Zero means unlimited.
	MaxEntries int

	// TypeTTLs overrides the per-type maximum ages. Nil applies
	// DefaultTypeTTLs.
	TypeTTLs map[analyzer.AnalysisType]time.Duration
}

// Cache is the thread-safe decision cache.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
	typeTTLs   map[analyzer.AnalysisType]time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once

	// now is the clock source, replaceable in tests.
	now func() time.Time

	// onEvict is an optional eviction hook used for metrics.
	onEvict func(reason string)
}

// New creates a cache and starts its background expiry sweep.
func New(cfg Config) *Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	typeTTLs := cfg.TypeTTLs
	if typeTTLs == nil {
		typeTTLs = DefaultTypeTTLs()
	}

	c := &Cache{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxEntries: cfg.MaxEntries,
		typeTTLs:   typeTTLs,
		stopCh:     make(chan struct{}),
		now:        time.Now,
	}

	go c.sweepExpired()
	return c
}

// SetEvictionHook installs a hook invoked on every eviction with the
// reason ("expired", "type_ttl", "lru"). Used to feed metrics.
func (c *Cache) SetEvictionHook(hook func(reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = hook
}

// TypeTTL returns the maximum age for results of the given type.
func (c *Cache) TypeTTL(t analyzer.AnalysisType) time.Duration {
	if ttl, ok := c.typeTTLs[t]; ok {
		return ttl
	}
	return DefaultTTL
}

// Get retrieves the cached result for a key.
//
// The entry's age is checked against the type-specific TTL on every
// read; an over-age entry is evicted immediately and reported as a
// miss, regardless of the store-level TTL. The returned result is the
// stored copy (already stamped with CachedAt) and must not be mutated.
func (c *Cache) Get(key string) (*analyzer.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := c.now()
	if now.After(e.expiresAt) {
		c.deleteLocked(key, "expired")
		return nil, false
	}
	if now.Sub(e.storedAt) > c.TypeTTL(e.analysisType) {
		c.deleteLocked(key, "type_ttl")
		return nil, false
	}

	e.lastAccessedAt = now
	return e.result, true
}

// GetStale retrieves a cached result ignoring both TTLs. Used by the
// cache fallback strategy, which deliberately accepts stale reads.
func (c *Cache) GetStale(key string) (*analyzer.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.result, true
}

// Set stores a copy of the result under the key, stamping CachedAt on
// the copy. The original result is never retained or mutated. At
// capacity the least recently accessed entry is evicted first.
func (c *Cache) Set(key string, t analyzer.AnalysisType, result *analyzer.AnalysisResult) {
	if result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictLRULocked()
		}
	}

	now := c.now()
	stored := result.Clone()
	cachedAt := now
	stored.CachedAt = &cachedAt

	c.entries[key] = &entry{
		result:         stored,
		analysisType:   t,
		storedAt:       now,
		expiresAt:      now.Add(c.ttl),
		lastAccessedAt: now,
	}
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Size returns the current number of entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Close stops the background sweep. Idempotent.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// deleteLocked removes an entry and fires the eviction hook.
// Caller must hold the write lock.
func (c *Cache) deleteLocked(key, reason string) {
	delete(c.entries, key)
	if c.onEvict != nil {
		c.onEvict(reason)
	}
}

// evictLRULocked evicts the least recently accessed entry.
// Caller must hold the write lock.
func (c *Cache) evictLRULocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.lastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.lastAccessedAt
		}
	}
	if oldestKey != "" {
		c.deleteLocked(oldestKey, "lru")
	}
}

// sweepExpired periodically removes entries past the store-level TTL.
func (c *Cache) sweepExpired() {
	interval := c.ttl / 2
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			c.deleteLocked(key, "expired")
		}
	}
}
