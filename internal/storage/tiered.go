package storage

import (
	"context"
	"log/slog"

	"github.com/questforge/questforge/pkg/game"
)

// Tiered composes the always-present memory cache with an optional
// durable store. Writes go through both (durable failures are logged
// and swallowed — the in-memory copy is already authoritative for this
// process); reads fall back to the durable tier only on a cache miss,
// installing hits into the cache on the way back.
type Tiered struct {
	cache   *SessionCache
	durable Store // nil when no durable tier is configured
	logger  *slog.Logger
}

// NewTiered creates the persistence tier. durable may be nil, in which
// case evicted sessions are permanently lost.
func NewTiered(cache *SessionCache, durable Store, logger *slog.Logger) *Tiered {
	return &Tiered{
		cache:   cache,
		durable: durable,
		logger:  logger,
	}
}

// Save writes through both tiers. It cannot fail: the memory write
// always succeeds and the durable write is best-effort.
func (t *Tiered) Save(ctx context.Context, s *game.Session) {
	t.cache.Put(s)

	if t.durable == nil {
		return
	}
	if err := t.durable.SaveSession(ctx, s.ID, s); err != nil {
		t.logger.Warn("Durable save failed, memory tier remains authoritative",
			"id", s.ID, "error", err)
	}
}

// Load returns the session or nil when unknown to both tiers. Durable
// failures are treated as misses.
func (t *Tiered) Load(ctx context.Context, id string) *game.Session {
	if s, ok := t.cache.Get(id); ok {
		return s
	}

	if t.durable == nil {
		return nil
	}
	s, err := t.durable.LoadSession(ctx, id)
	if err != nil {
		t.logger.Warn("Durable load failed", "id", id, "error", err)
		return nil
	}
	if s == nil {
		return nil
	}

	t.cache.Put(s)
	return s
}

// Delete removes a session from both tiers. Used only by the
// administrative delete operation, never by gameplay.
func (t *Tiered) Delete(ctx context.Context, id string) error {
	t.cache.Delete(id)
	if t.durable == nil {
		return nil
	}
	return t.durable.DeleteSession(ctx, id)
}
