package game

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxHealth is the health ceiling; sessions start at full health.
	MaxHealth = 100

	// TurnExperience is awarded for every successful turn, including
	// the opening turn created by CreateGame.
	TurnExperience = 10

	// AchievementExperience is awarded once per unlocked achievement.
	AchievementExperience = 25
)

// StoryEvent is one entry in a session's append-only history.
// Action is empty on the opening record.
type StoryEvent struct {
	Turn      int    `json:"turn"`
	Narrative string `json:"narrative"`
	Action    string `json:"action,omitempty"`
}

// Session is the authoritative state of one adventure. The engine owns
// the canonical in-memory copy; the durable store holds a JSON mirror.
type Session struct {
	ID            string        `json:"id"`
	PlayerName    string        `json:"player_name"`
	Theme         Theme         `json:"theme"`
	Language      string        `json:"language,omitempty"`
	Health        int           `json:"health"`
	Inventory     []string      `json:"inventory"`
	TurnCount     int           `json:"turn_count"`
	Narrative     string        `json:"narrative"`
	Choices       []string      `json:"choices"`
	ChoiceIcons   []string      `json:"choice_icons"`
	IsAlive       bool          `json:"is_alive"`
	IsComplete    bool          `json:"is_complete"`
	StoryHistory  []StoryEvent  `json:"story_history"`
	Scene         SceneMetadata `json:"scene"`
	MapNodes      []MapNode     `json:"map_nodes"`
	CurrentNodeID string        `json:"current_node_id,omitempty"`
	Achievements  []string      `json:"achievements"`
	Experience    int           `json:"experience"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewSession creates a fresh, alive session at full health with a
// generated ID. The caller applies the opening delta afterwards.
func NewSession(playerName string, theme Theme, language string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		PlayerName:   playerName,
		Theme:        theme,
		Language:     language,
		Health:       MaxHealth,
		Inventory:    make([]string, 0),
		IsAlive:      true,
		StoryHistory: make([]StoryEvent, 0),
		MapNodes:     make([]MapNode, 0),
		Achievements: make([]string, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of the session. The engine mutates a
// clone on each turn so concurrent readers of the cached session see
// either the previous or the next state, never a half-applied one.
func (s *Session) Clone() *Session {
	c := *s
	c.Inventory = append([]string(nil), s.Inventory...)
	c.Choices = append([]string(nil), s.Choices...)
	c.ChoiceIcons = append([]string(nil), s.ChoiceIcons...)
	c.StoryHistory = append([]StoryEvent(nil), s.StoryHistory...)
	c.Achievements = append([]string(nil), s.Achievements...)
	c.MapNodes = make([]MapNode, len(s.MapNodes))
	for i, n := range s.MapNodes {
		n.ConnectedTo = append([]string(nil), n.ConnectedTo...)
		c.MapNodes[i] = n
	}
	return &c
}

// Terminal reports whether the session accepts further actions.
// Dead and completed sessions are both terminal.
func (s *Session) Terminal() bool {
	return !s.IsAlive || s.IsComplete
}

// AddItem appends an item unless it is already held. Order is preserved.
func (s *Session) AddItem(item string) {
	for _, held := range s.Inventory {
		if held == item {
			return
		}
	}
	s.Inventory = append(s.Inventory, item)
}

// RemoveItem drops an item if held. Removing an absent item is a no-op.
func (s *Session) RemoveItem(item string) {
	for i, held := range s.Inventory {
		if held == item {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return
		}
	}
}

// ClampHealth bounds a health value to [0, MaxHealth].
func ClampHealth(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxHealth {
		return MaxHealth
	}
	return v
}

// SessionView is the public projection of a session returned to API
// callers. It mirrors Session minus the player's name, language and
// raw history.
type SessionView struct {
	ID            string        `json:"id"`
	PlayerName    string        `json:"player_name"`
	Narrative     string        `json:"narrative"`
	Choices       []string      `json:"choices"`
	ChoiceIcons   []string      `json:"choice_icons"`
	Health        int           `json:"health"`
	Inventory     []string      `json:"inventory"`
	TurnCount     int           `json:"turn_count"`
	IsAlive       bool          `json:"is_alive"`
	IsComplete    bool          `json:"is_complete"`
	Scene         SceneMetadata `json:"scene"`
	MapNodes      []MapNode     `json:"map_nodes"`
	CurrentNodeID string        `json:"current_node_id,omitempty"`
	Achievements  []string      `json:"achievements"`
	Experience    int           `json:"experience"`
}

// View builds the public projection of the session.
func (s *Session) View() *SessionView {
	choices := s.Choices
	if choices == nil {
		choices = []string{}
	}
	icons := s.ChoiceIcons
	if icons == nil {
		icons = []string{}
	}
	return &SessionView{
		ID:            s.ID,
		PlayerName:    s.PlayerName,
		Narrative:     s.Narrative,
		Choices:       choices,
		ChoiceIcons:   icons,
		Health:        s.Health,
		Inventory:     s.Inventory,
		TurnCount:     s.TurnCount,
		IsAlive:       s.IsAlive,
		IsComplete:    s.IsComplete,
		Scene:         s.Scene,
		MapNodes:      s.MapNodes,
		CurrentNodeID: s.CurrentNodeID,
		Achievements:  s.Achievements,
		Experience:    s.Experience,
	}
}
