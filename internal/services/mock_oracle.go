package services

import (
	"context"
	"sync"

	"github.com/questforge/questforge/pkg/game"
)

// MockOracle is a mock implementation of Oracle for testing and for
// running the API without an upstream model. With no overrides set it
// returns the fixed fallback payload, which is a complete playable
// scene.
type MockOracle struct {
	OpenFunc     func(ctx context.Context, theme game.Theme, playerName, language string) (game.RawPayload, error)
	ContinueFunc func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error)
	ReadyFunc    func(ctx context.Context) error

	// Track calls for testing
	OpenCalls     []OpenCall
	ContinueCalls []ContinueCall

	mu sync.Mutex // protects call records
}

type OpenCall struct {
	Theme      game.Theme
	PlayerName string
	Language   string
}

type ContinueCall struct {
	SessionID string
	Action    string
}

// Ensure MockOracle implements Oracle interface
var _ Oracle = (*MockOracle)(nil)

// NewMockOracle creates a new mock oracle.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		OpenCalls:     make([]OpenCall, 0),
		ContinueCalls: make([]ContinueCall, 0),
	}
}

func (m *MockOracle) Open(ctx context.Context, theme game.Theme, playerName, language string) (game.RawPayload, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, OpenCall{Theme: theme, PlayerName: playerName, Language: language})
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, theme, playerName, language)
	}
	return FallbackPayload(), nil
}

func (m *MockOracle) Continue(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
	m.mu.Lock()
	m.ContinueCalls = append(m.ContinueCalls, ContinueCall{SessionID: s.ID, Action: action})
	m.mu.Unlock()

	if m.ContinueFunc != nil {
		return m.ContinueFunc(ctx, s, action)
	}
	return FallbackPayload(), nil
}

func (m *MockOracle) Ready(ctx context.Context) error {
	if m.ReadyFunc != nil {
		return m.ReadyFunc(ctx)
	}
	return nil
}
