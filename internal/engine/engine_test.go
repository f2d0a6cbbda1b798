package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/questforge/internal/services"
	"github.com/questforge/questforge/internal/storage"
	"github.com/questforge/questforge/pkg/game"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func newTestEngine(oracle services.Oracle) *Engine {
	tier := storage.NewTiered(storage.NewSessionCache(100), nil, testLogger())
	return New(oracle, tier, testLogger())
}

// payload builds a canned oracle response in the wire shape.
func payload(narrative string, healthDelta int, choices, newItems, removedItems []string, complete bool, location string) game.RawPayload {
	quote := func(items []string) string {
		out := ""
		for i, it := range items {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf("%q", it)
		}
		return "[" + out + "]"
	}
	mapUpdate := `{}`
	if location != "" {
		mapUpdate = fmt.Sprintf(`{"new_location": %q}`, location)
	}
	return game.RawPayload(fmt.Sprintf(`{
		"narrative": %q,
		"choices": %s,
		"health_delta": %d,
		"new_items": %s,
		"removed_items": %s,
		"is_complete": %t,
		"map_update": %s
	}`, narrative, quote(choices), healthDelta, quote(newItems), quote(removedItems), complete, mapUpdate))
}

func TestCreateGame(t *testing.T) {
	oracle := services.NewMockOracle()
	oracle.OpenFunc = func(ctx context.Context, theme game.Theme, playerName, language string) (game.RawPayload, error) {
		return payload("You wake on a beach.", 0,
			[]string{"Explore", "Rest", "Shout"},
			[]string{"driftwood sword"}, nil, false, "The Beach"), nil
	}
	eng := newTestEngine(oracle)

	view, err := eng.CreateGame(context.Background(), "Ada", game.ThemePirate, "en")
	require.NoError(t, err)

	assert.Equal(t, game.MaxHealth, view.Health)
	assert.Equal(t, 1, view.TurnCount)
	assert.Equal(t, []string{"driftwood sword"}, view.Inventory)
	assert.Equal(t, []string{"Explore", "Rest", "Shout"}, view.Choices)
	assert.Len(t, view.ChoiceIcons, 3)
	assert.True(t, view.IsAlive)
	assert.False(t, view.IsComplete)
	assert.Contains(t, view.Achievements, game.AchievementFirstSteps)
	assert.Equal(t, game.TurnExperience+game.AchievementExperience, view.Experience)
	require.Len(t, view.MapNodes, 1)
	assert.Equal(t, "The Beach", view.MapNodes[0].Name)
	assert.Equal(t, view.MapNodes[0].ID, view.CurrentNodeID)

	require.Len(t, oracle.OpenCalls, 1)
	assert.Equal(t, "Ada", oracle.OpenCalls[0].PlayerName)
}

func TestCreateGame_OracleFailureUsesFallback(t *testing.T) {
	oracle := services.NewMockOracle()
	oracle.OpenFunc = func(ctx context.Context, theme game.Theme, playerName, language string) (game.RawPayload, error) {
		return nil, errors.New("simulated transport error")
	}
	eng := newTestEngine(oracle)

	view, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err, "oracle failure must never surface to the caller")

	assert.NotEmpty(t, view.Narrative)
	assert.Len(t, view.Choices, 3)
	assert.Equal(t, game.MaxHealth, view.Health)
	assert.Equal(t, 1, view.TurnCount)
	assert.True(t, view.IsAlive)
}

func TestProcessAction(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("A goblin nicks you.", -10,
			[]string{"Fight", "Flee"},
			[]string{"goblin ear"}, nil, false, "Goblin Camp"), nil
	}

	view, err := eng.ProcessAction(context.Background(), created.ID, "go north")
	require.NoError(t, err)

	assert.Equal(t, 90, view.Health)
	assert.Equal(t, 2, view.TurnCount)
	assert.Contains(t, view.Inventory, "goblin ear")
	assert.True(t, view.IsAlive)
	assert.False(t, view.IsComplete)

	// The literal action text is recorded in history.
	s, err := eng.GetGame(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, s.StoryHistory, 2)
	assert.Equal(t, "go north", s.StoryHistory[1].Action)
	assert.Equal(t, 2, s.StoryHistory[1].Turn)
}

func TestProcessAction_NotFound(t *testing.T) {
	eng := newTestEngine(services.NewMockOracle())

	_, err := eng.ProcessAction(context.Background(), "no-such-session", "go north")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessAction_DeathForcesCompletion(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	// Drive health down to the kill range first.
	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("It hurts.", -20, []string{"Endure"}, nil, nil, false, ""), nil
	}
	for i := 0; i < 4; i++ {
		_, err = eng.ProcessAction(context.Background(), created.ID, "press on")
		require.NoError(t, err)
	}

	// A huge swing is clamped, then kills from low health. The oracle
	// did not signal completion; death forces it.
	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("The dragon strikes.", -200, []string{"Should not see this"}, nil, nil, false, ""), nil
	}
	view, err := eng.ProcessAction(context.Background(), created.ID, "charge the dragon")
	require.NoError(t, err)

	assert.Equal(t, 0, view.Health)
	assert.False(t, view.IsAlive)
	assert.True(t, view.IsComplete)
	assert.Empty(t, view.Choices, "terminal sessions never present choices")
	assert.Empty(t, view.ChoiceIcons)
}

func TestProcessAction_HealthCappedAtMax(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("Ouch.", -10, []string{"Rest"}, nil, nil, false, ""), nil
	}
	view, err := eng.ProcessAction(context.Background(), created.ID, "stumble")
	require.NoError(t, err)
	require.Equal(t, 90, view.Health)

	// +50 is clamped to +20; 90+20 caps at 100, not 140.
	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("A healing spring.", 50, []string{"Drink more"}, nil, nil, false, ""), nil
	}
	view, err = eng.ProcessAction(context.Background(), created.ID, "drink")
	require.NoError(t, err)
	assert.Equal(t, game.MaxHealth, view.Health)
}

func TestProcessAction_TerminalSessionImmutable(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("And they lived happily.", 0, []string{"ignored"}, nil, nil, true, ""), nil
	}
	view, err := eng.ProcessAction(context.Background(), created.ID, "finish the quest")
	require.NoError(t, err)
	require.True(t, view.IsComplete)
	require.Empty(t, view.Choices)

	before, err := eng.GetGame(context.Background(), created.ID)
	require.NoError(t, err)
	turnsBefore := before.TurnCount
	healthBefore := before.Health
	continueCalls := len(oracle.ContinueCalls)

	_, err = eng.ProcessAction(context.Background(), created.ID, "keep going")
	assert.ErrorIs(t, err, ErrGameOver)

	after, err := eng.GetGame(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, turnsBefore, after.TurnCount, "failed call must not mutate state")
	assert.Equal(t, healthBefore, after.Health)
	assert.Len(t, oracle.ContinueCalls, continueCalls,
		"terminal check must happen before any oracle call")
}

func TestProcessAction_OracleFailureUsesFallback(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return nil, context.DeadlineExceeded
	}
	view, err := eng.ProcessAction(context.Background(), created.ID, "go north")
	require.NoError(t, err)
	assert.Equal(t, 2, view.TurnCount)
	assert.NotEmpty(t, view.Narrative)
	assert.Len(t, view.Choices, 3)
}

func TestProcessAction_InventoryDeltas(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		return payload("Loot and loss.", 0, []string{"Onward"},
			[]string{"torch", "torch", "rope"},
			[]string{"not held"}, false, ""), nil
	}
	view, err := eng.ProcessAction(context.Background(), created.ID, "search the chest")
	require.NoError(t, err)

	assert.Equal(t, []string{"torch", "rope"}, view.Inventory,
		"duplicate gains collapse; removing an absent item is a no-op")
}

func TestProcessAction_SerializedPerSession(t *testing.T) {
	oracle := services.NewMockOracle()
	eng := newTestEngine(oracle)

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	// A slow oracle widens the read-modify-write window; the
	// per-session lock must still serialize the two turns.
	oracle.ContinueFunc = func(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
		time.Sleep(20 * time.Millisecond)
		return payload("Tick.", 0, []string{"Next"}, nil, nil, false, ""), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.ProcessAction(context.Background(), created.ID, "act")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := eng.GetGame(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TurnCount)
	require.Len(t, s.StoryHistory, 3)
	for i, ev := range s.StoryHistory {
		assert.Equal(t, i+1, ev.Turn, "history turns must be gapless and ordered")
	}
}

func TestGetGame(t *testing.T) {
	eng := newTestEngine(services.NewMockOracle())

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	s, err := eng.GetGame(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, s.ID)
	assert.Equal(t, "Ada", s.PlayerName)

	_, err = eng.GetGame(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGame(t *testing.T) {
	eng := newTestEngine(services.NewMockOracle())

	created, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)

	require.NoError(t, eng.DeleteGame(context.Background(), created.ID))
	_, err = eng.GetGame(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_ReadThroughDurableStore(t *testing.T) {
	durable := storage.NewMockStore()
	tier := storage.NewTiered(storage.NewSessionCache(1), durable, testLogger())
	oracle := services.NewMockOracle()
	eng := New(oracle, tier, testLogger())

	first, err := eng.CreateGame(context.Background(), "Ada", game.ThemeFantasy, "en")
	require.NoError(t, err)
	// Second session evicts the first from the size-1 memory tier.
	_, err = eng.CreateGame(context.Background(), "Bob", game.ThemeSciFi, "en")
	require.NoError(t, err)

	view, err := eng.ProcessAction(context.Background(), first.ID, "go on")
	require.NoError(t, err, "evicted session must be recovered from the durable tier")
	assert.Equal(t, 2, view.TurnCount)
}
