package service

import (
	"sync"
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// cacheEntry pairs key material with its expiry deadline.
type cacheEntry struct {
	key       []byte
	expiresAt time.Time
}

// TTLKeyCache is a thread-safe key cache with per-entry time-to-live.
//
// Derivation is pure but expensive relative to request latency, so derived
// tenant keys are cached briefly (60s by default). The cache deliberately does
// not serialize concurrent misses: two requests that both miss simply both
// derive the same key, which costs CPU but never correctness.
//
// The cache is an explicit, injectable object rather than a package-level
// singleton so tests can substitute a zero-TTL variant to assert freshness
// behavior deterministically.
type TTLKeyCache struct {
	ttl     time.Duration
	entries sync.Map
}

// NewTTLKeyCache creates a key cache with the given time-to-live.
// A zero or negative TTL disables caching entirely: every Get misses.
func NewTTLKeyCache(ttl time.Duration) *TTLKeyCache {
	return &TTLKeyCache{ttl: ttl}
}

// Get returns a copy of the cached key material for id if present and fresh.
// Expired entries are evicted lazily on access.
func (c *TTLKeyCache) Get(id string) ([]byte, bool) {
	value, ok := c.entries.Load(id)
	if !ok {
		return nil, false
	}

	entry := value.(cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(id)
		return nil, false
	}

	// Copy so callers never alias the cached buffer.
	out := make([]byte, len(entry.key))
	copy(out, entry.key)
	return out, true
}

// Set stores a copy of the key material under id with the configured TTL.
// With a non-positive TTL the call is a no-op.
func (c *TTLKeyCache) Set(id string, key []byte) {
	if c.ttl <= 0 {
		return
	}

	stored := make([]byte, len(key))
	copy(stored, key)

	c.entries.Store(id, cacheEntry{
		key:       stored,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Purge removes all entries and zeroes the cached key material.
// Call on shutdown or after a master secret change.
func (c *TTLKeyCache) Purge() {
	c.entries.Range(func(id, value any) bool {
		if entry, ok := value.(cacheEntry); ok {
			cryptoDomain.Zero(entry.key)
		}
		c.entries.Delete(id)
		return true
	})
}
