package storage

import (
	"sync"

	"github.com/questforge/questforge/pkg/game"
)

// DefaultMaxCachedSessions bounds the memory tier when no explicit
// limit is configured.
const DefaultMaxCachedSessions = 5000

// SessionCache is the bounded in-memory first tier. Reads and writes
// never fail. When the bound is exceeded the single oldest-inserted
// session is evicted — insertion order, not access order, governs
// eviction. The order queue makes that invariant explicit instead of
// relying on map iteration behavior.
type SessionCache struct {
	mu       sync.RWMutex
	max      int
	sessions map[string]*game.Session
	order    []string // insertion order, oldest first
}

// NewSessionCache creates a cache holding at most max sessions.
func NewSessionCache(max int) *SessionCache {
	if max <= 0 {
		max = DefaultMaxCachedSessions
	}
	return &SessionCache{
		max:      max,
		sessions: make(map[string]*game.Session),
		order:    make([]string, 0),
	}
}

// Put stores a session. Re-inserting an existing ID updates the value
// without disturbing its eviction position.
func (c *SessionCache) Put(s *game.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sessions[s.ID]; !exists {
		c.order = append(c.order, s.ID)
	}
	c.sessions[s.ID] = s

	for len(c.sessions) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.sessions, oldest)
	}
}

// Get returns the cached session, or false on a miss.
func (c *SessionCache) Get(id string) (*game.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

// Delete removes a session from the cache if present.
func (c *SessionCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[id]; !ok {
		return
	}
	delete(c.sessions, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}
