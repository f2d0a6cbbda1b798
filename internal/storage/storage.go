package storage

import (
	"context"

	"github.com/questforge/questforge/pkg/game"
)

// Store defines the interface for durable session persistence, the
// optional second tier behind the in-memory cache. The durable copy is
// a mirror with no independent authority: on conflict the in-memory
// session wins for this process.
type Store interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error

	// Close closes the store connection
	Close() error

	// SaveSession persists a session snapshot under its ID
	SaveSession(ctx context.Context, id string, s *game.Session) error

	// LoadSession retrieves a session by ID.
	// Returns nil if the session doesn't exist
	LoadSession(ctx context.Context, id string) (*game.Session, error)

	// DeleteSession removes a session by ID
	DeleteSession(ctx context.Context, id string) error
}
