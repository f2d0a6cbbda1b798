// Package prompts builds the oracle prompts for QuestForge sessions.
// The wire contract (the JSON shape the oracle is asked to emit) is
// defined here in one place; pkg/game.Sanitize is what actually
// enforces it on the way back in.
package prompts

import (
	"fmt"
	"strings"

	"github.com/questforge/questforge/pkg/game"
)

const (
	// MaxActionLen truncates player actions before they reach a
	// prompt, bounding injection via very long inputs.
	MaxActionLen = 500

	// historyWindow is how many recent story events are replayed to
	// the oracle for context.
	historyWindow = 6

	// historySnippetLen bounds each replayed narrative.
	historySnippetLen = 200
)

// SystemPrompt frames every oracle call. It pins the response to the
// JSON shape the sanitizer expects.
const SystemPrompt = `You are the narrator of QuestForge, an interactive text adventure game.

RULES:
- Write in second person ("You step into the clearing...")
- Keep narratives short: 1-2 paragraphs maximum
- Always provide exactly 3 distinct choices for the player
- Each choice should be short (under 10 words) and clear
- Health changes must make narrative sense (minor harm -5 to -10, help +5 to +15)
- Items gained or lost must be narratively justified
- Set is_complete to true only for a natural ending after 8+ turns

You MUST respond with valid JSON in exactly this format:
{
  "narrative": "Short, vivid story text...",
  "choices": ["Bold choice", "Careful choice", "Clever choice"],
  "choice_icons": ["sword", "shield", "magnifying-glass"],
  "health_delta": 0,
  "new_items": [],
  "removed_items": [],
  "is_complete": false,
  "scene_visual": {
    "scene_type": "exploration",
    "mood": "mysterious",
    "location_name": "The Old Forest",
    "location_icon": "forest",
    "npc_name": null,
    "npc_type": null,
    "item_found": null,
    "weather": "clear"
  },
  "map_update": {
    "new_location": "The Old Forest",
    "location_icon": "forest"
  }
}

scene_type options: exploration, combat, discovery, puzzle, dialogue, escape
mood options: tense, cheerful, scary, mysterious, victorious, calm, exciting
health_delta: integer, 0 for no change, negative for damage, positive for healing
new_items / removed_items: item name strings the player gains or loses this turn
is_complete: boolean, true only when the adventure reaches a definitive ending`

// themeDescriptions seeds the opening scene for each theme.
var themeDescriptions = map[game.Theme]string{
	game.ThemeFantasy: "a high-fantasy realm of old forests, ruined keeps and " +
		"wandering magic, where the player is a young adventurer setting out " +
		"on their first quest",
	game.ThemeSciFi: "a derelict deep-space research station drifting near a " +
		"dying star, full of flickering consoles, sealed bulkheads and " +
		"signals nobody should be sending",
	game.ThemeMystery: "a fog-bound coastal town where everyone has a secret, " +
		"the player is an amateur detective, and last night something " +
		"disappeared from the locked museum",
	game.ThemeHorror: "a spooky-but-fun haunted manor of creaking floors, " +
		"whispering portraits and restless ghosts with unfinished business; " +
		"eerie, never gruesome",
	game.ThemePirate: "the golden age of piracy, where the player sails with a " +
		"ragtag crew hunting a legendary treasure across storm-swept islands",
}

// Opening builds the prompt for a session's first scene.
func Opening(theme game.Theme, playerName, language string) string {
	desc, ok := themeDescriptions[theme]
	if !ok {
		desc = themeDescriptions[game.ThemeFantasy]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Begin a new adventure set in %s. ", desc)
	fmt.Fprintf(&b, "The player's name is %s. ", playerName)
	b.WriteString("Create an opening scene that establishes the setting, " +
		"introduces a compelling hook, and gives the player their first " +
		"meaningful choice. The player starts with full health (100). " +
		"Give them one fitting starting item. " +
		"Provide a map_update naming the starting location.")
	if language != "" && language != "en" {
		fmt.Fprintf(&b, " Write all narrative text and choices in the language with BCP 47 tag %q.", language)
	}
	return b.String()
}

// Continue builds the prompt for the next turn of an existing session.
// The action is truncated to MaxActionLen before being embedded.
func Continue(s *game.Session, action string) string {
	if len(action) > MaxActionLen {
		action = action[:MaxActionLen]
	}

	inventory := "empty"
	if len(s.Inventory) > 0 {
		inventory = strings.Join(s.Inventory, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Continue the adventure for player %s.\n\n", s.PlayerName)
	b.WriteString("CURRENT STATE:\n")
	fmt.Fprintf(&b, "- Health: %d/%d\n", s.Health, game.MaxHealth)
	fmt.Fprintf(&b, "- Inventory: %s\n", inventory)
	fmt.Fprintf(&b, "- Turn: %d\n\n", s.TurnCount)
	fmt.Fprintf(&b, "STORY SO FAR:\n%s\n\n", historyContext(s))
	fmt.Fprintf(&b, "PLAYER ACTION: %s\n\n", action)
	b.WriteString("Narrate what happens next based on the player's action. " +
		"Move to a new location (provide map_update with new_location). " +
		"Make the consequences feel natural.")
	if s.Language != "" && s.Language != "en" {
		fmt.Fprintf(&b, " Write all narrative text and choices in the language with BCP 47 tag %q.", s.Language)
	}
	return b.String()
}

// historyContext condenses the most recent story events into a short
// bullet summary for the prompt.
func historyContext(s *game.Session) string {
	if len(s.StoryHistory) == 0 {
		return "No previous events."
	}
	recent := s.StoryHistory
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	var parts []string
	for _, ev := range recent {
		narrative := ev.Narrative
		if len(narrative) > historySnippetLen {
			narrative = narrative[:historySnippetLen]
		}
		parts = append(parts, "- "+narrative)
		if ev.Action != "" {
			parts = append(parts, "  Player chose: "+ev.Action)
		}
	}
	return strings.Join(parts, "\n")
}
