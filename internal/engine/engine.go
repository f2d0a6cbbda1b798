// Package engine implements the session state machine: it owns the
// authoritative game state and is the only component that mutates it.
// Oracle output reaches it exclusively through game.Sanitize, and the
// only errors it surfaces to callers are ErrNotFound and ErrGameOver.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/questforge/questforge/internal/services"
	"github.com/questforge/questforge/internal/storage"
	"github.com/questforge/questforge/pkg/game"
)

var (
	// ErrNotFound means the session ID is unknown to both tiers.
	ErrNotFound = errors.New("session not found")

	// ErrGameOver means an action was attempted on a terminal
	// (dead or completed) session. No state is mutated.
	ErrGameOver = errors.New("session is already over")
)

// Engine is the session state machine. All collaborators are injected;
// it holds no ambient state.
type Engine struct {
	oracle services.Oracle
	store  *storage.Tiered
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an engine with the given oracle and persistence tier.
func New(oracle services.Oracle, store *storage.Tiered, logger *slog.Logger) *Engine {
	return &Engine{
		oracle: oracle,
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns for one session id.
// At most one mutation is in flight per session; distinct sessions
// proceed independently.
func (e *Engine) sessionLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

func (e *Engine) dropLock(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locks, id)
}

// CreateGame starts a new session: opening scene from the oracle,
// sanitized and applied as turn one.
func (e *Engine) CreateGame(ctx context.Context, playerName string, theme game.Theme, language string) (*game.SessionView, error) {
	s := game.NewSession(playerName, theme, language)

	lock := e.sessionLock(s.ID)
	lock.Lock()
	defer lock.Unlock()

	payload, err := e.oracle.Open(ctx, theme, playerName, language)
	if err != nil {
		e.logger.Warn("Oracle open failed, using fallback", "id", s.ID, "error", err)
		payload = services.FallbackPayload()
	}
	delta := game.Sanitize(payload)

	s.Health = game.ClampHealth(game.MaxHealth + delta.HealthDelta)
	for _, item := range delta.ItemsGained {
		s.AddItem(item)
	}
	s.TurnCount = 1
	s.Narrative = delta.Narrative
	s.Choices = delta.Choices
	s.ChoiceIcons = delta.ChoiceIcons
	s.Scene = delta.Scene
	s.StoryHistory = append(s.StoryHistory, game.StoryEvent{
		Turn:      1,
		Narrative: delta.Narrative,
	})

	s.GrowMap(delta.MapHint)
	unlocked := s.CheckAchievements()
	s.Experience += game.TurnExperience + len(unlocked)*game.AchievementExperience
	s.UpdatedAt = time.Now()

	e.store.Save(ctx, s)
	e.logger.Info("Created session",
		"id", s.ID,
		"player", playerName,
		"theme", theme,
		"health", s.Health)
	return s.View(), nil
}

// ProcessAction runs one turn. The terminal check happens before the
// oracle call: terminal sessions are immutable and cost no oracle
// traffic. Oracle failure degrades to the fallback scene; only
// ErrNotFound and ErrGameOver can be returned.
func (e *Engine) ProcessAction(ctx context.Context, id, action string) (*game.SessionView, error) {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	prev := e.store.Load(ctx, id)
	if prev == nil {
		return nil, ErrNotFound
	}
	if prev.Terminal() {
		return nil, ErrGameOver
	}

	payload, err := e.oracle.Continue(ctx, prev, action)
	if err != nil {
		e.logger.Warn("Oracle continue failed, using fallback", "id", id, "error", err)
		payload = services.FallbackPayload()
	}
	delta := game.Sanitize(payload)

	s := prev.Clone()
	s.Health = game.ClampHealth(s.Health + delta.HealthDelta)
	s.IsAlive = s.Health > 0
	// Death forces completion even when the oracle didn't signal it.
	s.IsComplete = delta.IsComplete || !s.IsAlive

	for _, item := range delta.ItemsGained {
		s.AddItem(item)
	}
	for _, item := range delta.ItemsLost {
		s.RemoveItem(item)
	}

	s.TurnCount++
	s.Narrative = delta.Narrative
	s.Scene = delta.Scene
	s.StoryHistory = append(s.StoryHistory, game.StoryEvent{
		Turn:      s.TurnCount,
		Narrative: delta.Narrative,
		Action:    action,
	})

	if s.Terminal() {
		// Terminal sessions never present further choices.
		s.Choices = []string{}
		s.ChoiceIcons = []string{}
	} else {
		s.Choices = delta.Choices
		s.ChoiceIcons = delta.ChoiceIcons
	}

	s.GrowMap(delta.MapHint)
	unlocked := s.CheckAchievements()
	s.Experience += game.TurnExperience + len(unlocked)*game.AchievementExperience
	s.UpdatedAt = time.Now()

	e.store.Save(ctx, s)
	e.logger.Info("Processed action",
		"id", id,
		"turn", s.TurnCount,
		"health", s.Health,
		"alive", s.IsAlive,
		"complete", s.IsComplete)
	return s.View(), nil
}

// GetGame returns the full session state without mutating anything.
func (e *Engine) GetGame(ctx context.Context, id string) (*game.Session, error) {
	s := e.store.Load(ctx, id)
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// DeleteGame removes a session from both tiers. This is an
// administrative operation; gameplay never deletes.
func (e *Engine) DeleteGame(ctx context.Context, id string) error {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.dropLock(id)
	return nil
}
