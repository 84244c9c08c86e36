package dedup

import (
	"sync"
	"time"
)

// Cache suppresses retried deliveries of the same message id within a TTL.
// It is safe for concurrent use. Expired entries are evicted as a side
// effect of every check, so the cache self-bounds without a timer.
type Cache struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewCache creates a cache that forgets ids after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// CheckAndMark reports whether id was already seen within the TTL and, if
// not, marks it seen in the same critical section. Two concurrent deliveries
// of a new id therefore admit exactly one.
func (c *Cache) CheckAndMark(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictLocked(now)

	if _, ok := c.seen[id]; ok {
		return true
	}
	c.seen[id] = now
	return false
}

// IsDuplicate reports whether id is present and unexpired. It does not mark.
func (c *Cache) IsDuplicate(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(c.now())
	_, ok := c.seen[id]
	return ok
}

// MarkSeen records id at the current time.
func (c *Cache) MarkSeen(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[id] = c.now()
}

// Len returns the number of unexpired entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(c.now())
	return len(c.seen)
}

func (c *Cache) evictLocked(now time.Time) {
	for id, at := range c.seen {
		if now.Sub(at) > c.ttl {
			delete(c.seen, id)
		}
	}
}
