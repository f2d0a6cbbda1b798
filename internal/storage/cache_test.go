package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/questforge/pkg/game"
)

func testSession(name string) *game.Session {
	return game.NewSession(name, game.ThemeFantasy, "en")
}

func TestSessionCache_PutGet(t *testing.T) {
	c := NewSessionCache(10)
	s := testSession("Ada")
	c.Put(s)

	got, ok := c.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestSessionCache_EvictsOldestInserted(t *testing.T) {
	c := NewSessionCache(3)
	sessions := make([]*game.Session, 5)
	for i := range sessions {
		sessions[i] = testSession(fmt.Sprintf("p%d", i))
		c.Put(sessions[i])
	}

	assert.Equal(t, 3, c.Len())
	for i := 0; i < 2; i++ {
		_, ok := c.Get(sessions[i].ID)
		assert.False(t, ok, "session %d should have been evicted", i)
	}
	for i := 2; i < 5; i++ {
		_, ok := c.Get(sessions[i].ID)
		assert.True(t, ok, "session %d should remain", i)
	}
}

func TestSessionCache_EvictionIgnoresAccessOrder(t *testing.T) {
	c := NewSessionCache(2)
	a := testSession("a")
	b := testSession("b")
	c.Put(a)
	c.Put(b)

	// Reading a does not protect it: insertion order governs eviction.
	_, _ = c.Get(a.ID)
	c.Put(testSession("c"))

	_, ok := c.Get(a.ID)
	assert.False(t, ok)
	_, ok = c.Get(b.ID)
	assert.True(t, ok)
}

func TestSessionCache_UpdateKeepsEvictionPosition(t *testing.T) {
	c := NewSessionCache(2)
	a := testSession("a")
	b := testSession("b")
	c.Put(a)
	c.Put(b)

	// Re-inserting a must not move it to the back of the queue.
	a.TurnCount = 5
	c.Put(a)
	c.Put(testSession("c"))

	_, ok := c.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestSessionCache_Delete(t *testing.T) {
	c := NewSessionCache(3)
	s := testSession("Ada")
	c.Put(s)
	c.Delete(s.ID)

	_, ok := c.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// Delete of an absent id is a no-op.
	c.Delete("missing")
}

func TestSessionCache_DefaultBound(t *testing.T) {
	c := NewSessionCache(0)
	assert.Equal(t, DefaultMaxCachedSessions, c.max)
}
