package game

import (
	"encoding/json"
	"strconv"
)

const (
	// MaxHealthDelta clamps the per-turn health swing the oracle can
	// inflict, in either direction.
	MaxHealthDelta = 20

	// MaxChoices is the most options a single scene may present.
	MaxChoices = 4

	// MaxItemsPerTurn caps gained and lost item lists independently.
	MaxItemsPerTurn = 5

	// DefaultChoiceIcon pads choice_icons when the oracle returns
	// fewer icons than choices.
	DefaultChoiceIcon = "flashlight"
)

// RawPayload is the oracle's wire response, fully untrusted. Any field
// may be absent, wrong-typed or out of range. Sanitize is the only way
// to turn it into something the engine will touch.
type RawPayload []byte

// SceneMetadata carries visual/context hints for the current scene.
// Every field has a safe default; none is load-bearing for game logic.
type SceneMetadata struct {
	SceneType    string `json:"scene_type"`
	Mood         string `json:"mood"`
	LocationName string `json:"location_name"`
	LocationIcon string `json:"location_icon"`
	NPCName      string `json:"npc_name,omitempty"`
	NPCType      string `json:"npc_type,omitempty"`
	ItemFound    string `json:"item_found,omitempty"`
	Weather      string `json:"weather"`
}

// MapHint describes a new location the map graph should grow toward.
// An empty Location means no map change this turn.
type MapHint struct {
	Location string `json:"new_location"`
	Icon     string `json:"location_icon"`
}

// Delta is the validated, bounded representation of one turn's
// changes. It is transient and never persisted on its own.
type Delta struct {
	Narrative   string
	Choices     []string
	ChoiceIcons []string
	HealthDelta int
	ItemsGained []string
	ItemsLost   []string
	IsComplete  bool
	Scene       SceneMetadata
	MapHint     MapHint
}

// Sanitize converts an untrusted payload into a bounded Delta. It is
// total: malformed input degrades field-by-field to defaults, never to
// an error. This is the single validation boundary between the oracle
// and the state machine.
func Sanitize(raw RawPayload) Delta {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		fields = nil
	}

	d := Delta{
		Narrative:   coerceString(fields["narrative"], ""),
		Choices:     coerceStringList(fields["choices"], MaxChoices),
		ChoiceIcons: coerceStringList(fields["choice_icons"], MaxChoices),
		HealthDelta: clampDelta(coerceInt(fields["health_delta"], 0)),
		ItemsGained: coerceStringList(fields["new_items"], MaxItemsPerTurn),
		ItemsLost:   coerceStringList(fields["removed_items"], MaxItemsPerTurn),
		IsComplete:  coerceBool(fields["is_complete"]),
		Scene:       sanitizeScene(fields["scene_visual"]),
		MapHint:     sanitizeMapHint(fields["map_update"]),
	}

	// Icons must line up one-to-one with choices.
	if len(d.ChoiceIcons) > len(d.Choices) {
		d.ChoiceIcons = d.ChoiceIcons[:len(d.Choices)]
	}
	for len(d.ChoiceIcons) < len(d.Choices) {
		d.ChoiceIcons = append(d.ChoiceIcons, DefaultChoiceIcon)
	}
	return d
}

func clampDelta(v int) int {
	if v < -MaxHealthDelta {
		return -MaxHealthDelta
	}
	if v > MaxHealthDelta {
		return MaxHealthDelta
	}
	return v
}

func sanitizeScene(raw json.RawMessage) SceneMetadata {
	var fields map[string]json.RawMessage
	if raw != nil {
		_ = json.Unmarshal(raw, &fields)
	}
	return SceneMetadata{
		SceneType:    coerceString(fields["scene_type"], "exploration"),
		Mood:         coerceString(fields["mood"], "neutral"),
		LocationName: coerceString(fields["location_name"], ""),
		LocationIcon: coerceString(fields["location_icon"], ""),
		NPCName:      coerceString(fields["npc_name"], ""),
		NPCType:      coerceString(fields["npc_type"], ""),
		ItemFound:    coerceString(fields["item_found"], ""),
		Weather:      coerceString(fields["weather"], "clear"),
	}
}

func sanitizeMapHint(raw json.RawMessage) MapHint {
	var fields map[string]json.RawMessage
	if raw != nil {
		_ = json.Unmarshal(raw, &fields)
	}
	return MapHint{
		Location: coerceString(fields["new_location"], ""),
		Icon:     coerceString(fields["location_icon"], "location"),
	}
}

// coerceString accepts JSON strings directly and stringifies numbers
// and booleans. Anything else yields the default.
func coerceString(raw json.RawMessage, def string) string {
	if raw == nil {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return def
}

// coerceInt accepts JSON numbers (truncated) and numeric strings.
func coerceInt(raw json.RawMessage, def int) int {
	if raw == nil {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func coerceBool(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return false
}

// coerceStringList coerces each entry individually; entries that
// cannot be coerced are dropped rather than failing the list.
func coerceStringList(raw json.RawMessage, limit int) []string {
	out := make([]string, 0)
	if raw == nil {
		return out
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return out
	}
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			out = append(out, s)
			continue
		}
		if v := coerceString(e, ""); v != "" {
			out = append(out, v)
		}
	}
	return out
}
