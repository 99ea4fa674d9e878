// Package cache provides a TTL-bounded response cache for idempotent
// backend reads, so repeated navigation does not re-hit the network.
//
// Keys combine a logical function name with a JSON serialisation of the
// call arguments. Mutating calls invalidate by key prefix so subsequent
// reads are forced to refetch.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long entries stay valid unless overridden.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxEntries is the approximate entry bound.
	DefaultMaxEntries = 100

	// sweepEvery is the insertion interval between eviction sweeps.
	// The entry bound is approximate: eviction runs periodically, not
	// on every write, which keeps inserts from paying a full scan.
	sweepEvery = 10
)

// entry is a stored value with its insertion time and lifetime.
type entry struct {
	data     any
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a process-wide keyed response cache. It is safe for
// concurrent use, but performs no single-flight deduplication: two
// concurrent fills for the same key both run and the last write wins.
// Reads are idempotent, so that is an accepted limitation.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	inserts    int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a cache with the default entry bound.
func New() *Cache {
	return NewWithSize(DefaultMaxEntries)
}

// NewWithSize creates a cache bounded to approximately maxEntries.
func NewWithSize(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Key builds a cache key from a logical name and the call arguments.
// Arguments are serialised as JSON; values that fail to serialise fall
// back to their Go string representation.
func Key(name string, args ...any) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			parts[i] = fmt.Sprintf("%v", arg)
			continue
		}
		parts[i] = string(b)
	}
	return name + ":" + strings.Join(parts, ",")
}

// Get returns the value for key if a valid entry exists.
// Expired entries are treated as absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Put stores a value under key. A non-positive ttl means DefaultTTL.
func (c *Cache) Put(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{data: value, storedAt: c.now(), ttl: ttl}

	c.inserts++
	if c.inserts%sweepEvery == 0 {
		c.sweep()
	}
}

// sweep drops expired entries, then evicts oldest-by-insertion entries
// until the bound is satisfied. Caller must hold the lock.
func (c *Cache) sweep() {
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= e.ttl {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].storedAt.Before(c.entries[keys[j]].storedAt)
	})
	for _, key := range keys[:len(c.entries)-c.maxEntries] {
		delete(c.entries, key)
	}
}

// Invalidate removes all entries whose key contains pattern.
// Returns the number of entries removed.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateRegexp removes all entries whose key matches re.
// Returns the number of entries removed.
func (c *Cache) InvalidateRegexp(re *regexp.Regexp) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including any expired
// entries not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Do returns the cached value for key, or runs fill and caches its
// result for ttl. Errors from fill are never cached and propagate
// unchanged.
func Do[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fill func(context.Context) (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	value, err := fill(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Put(key, value, ttl)
	return value, nil
}
