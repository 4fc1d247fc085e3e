package guardrail

import (
	"crypto/sha256"
	"sort"
	"strings"
	"sync"
	"time"
)

// cacheEntry is one stored verdict with the time it was written, so the
// eviction pass can identify the oldest decile.
type cacheEntry struct {
	result    Result
	storedAt  time.Time
	expiresAt time.Time
}

// ResultCache is a content-addressed cache of guardrail verdicts, keyed by
// SHA-256(content) xor'd with a digest of the sorted checkpoint names that
// ran. Applies only to the input phase: output content is model-derived
// and rarely repeats. At capacity the oldest decile by storedAt is evicted.
type ResultCache struct {
	mu      sync.Mutex
	entries map[[32]byte]cacheEntry
	ttl     time.Duration
	maxSize int
}

// NewResultCache builds a ResultCache holding at most maxSize verdicts for
// ttl each.
func NewResultCache(maxSize int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[[32]byte]cacheEntry, maxSize),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Key computes the content-address for content checked against the given
// checkpoint names (order-independent: names are sorted before hashing).
func Key(content string, checkpointNames []string) [32]byte {
	contentHash := sha256.Sum256([]byte(content))

	names := append([]string(nil), checkpointNames...)
	sort.Strings(names)
	namesHash := sha256.Sum256([]byte(strings.Join(names, "\x00")))

	var key [32]byte
	for i := range key {
		key[i] = contentHash[i] ^ namesHash[i]
	}
	return key
}

// Get returns the cached result for key if present and not expired.
func (c *ResultCache) Get(key [32]byte) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return Result{}, false
	}
	return e.result, true
}

// Put stores result under key, evicting the oldest decile by storedAt if
// the cache is at capacity.
func (c *ResultCache) Put(key [32]byte, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestDecileLocked()
	}

	now := time.Now()
	c.entries[key] = cacheEntry{result: result, storedAt: now, expiresAt: now.Add(c.ttl)}
}

// Size returns the current entry count.
func (c *ResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[32]byte]cacheEntry, c.maxSize)
}

func (c *ResultCache) evictOldestDecileLocked() {
	n := len(c.entries) / 10
	if n < 1 {
		n = 1
	}

	type keyed struct {
		key      [32]byte
		storedAt time.Time
	}
	ordered := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		ordered = append(ordered, keyed{k, e.storedAt})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].storedAt.Before(ordered[j].storedAt) })

	for i := 0; i < n && i < len(ordered); i++ {
		delete(c.entries, ordered[i].key)
	}
}
