package services

import (
	"context"

	"github.com/questforge/questforge/pkg/game"
)

// Oracle defines the interface for the narrative oracle that decides
// what happens next. Output is fully untrusted: implementations should
// degrade to FallbackPayload rather than returning transport errors,
// and the engine treats any error it does see the same way. Oracle
// failure is therefore never visible to API callers.
type Oracle interface {
	// Open generates the opening scene for a new session.
	Open(ctx context.Context, theme game.Theme, playerName, language string) (game.RawPayload, error)

	// Continue generates the next scene from the current session
	// snapshot and the player's action.
	Continue(ctx context.Context, s *game.Session, action string) (game.RawPayload, error)

	// Ready checks whether the oracle can serve requests.
	Ready(ctx context.Context) error
}

// fallbackJSON is the fixed canned scene returned when the oracle is
// unreachable or returns something unparseable. Same shape as a real
// payload: neutral health delta, three generic choices, no item
// changes, so downstream code needs no special-casing.
const fallbackJSON = `{
  "narrative": "The world blurs for a moment, as if the story itself paused to catch its breath. When things settle, you find yourself at a quiet crossroads. Three paths stretch out before you, each glowing with a different colored light.",
  "choices": [
    "Follow the red glow boldly",
    "Sneak down the blue path",
    "Investigate the green light"
  ],
  "choice_icons": ["flashlight", "sneak", "magnifying-glass"],
  "health_delta": 0,
  "new_items": [],
  "removed_items": [],
  "is_complete": false,
  "scene_visual": {
    "scene_type": "exploration",
    "mood": "mysterious",
    "location_name": "The Crossroads",
    "location_icon": "field",
    "npc_name": null,
    "npc_type": null,
    "item_found": null,
    "weather": "foggy"
  },
  "map_update": {
    "new_location": "The Crossroads",
    "location_icon": "field"
  }
}`

// FallbackPayload returns the fixed safe payload used whenever the
// oracle fails. The returned slice must not be mutated.
func FallbackPayload() game.RawPayload {
	return game.RawPayload(fallbackJSON)
}
