package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/questforge/pkg/game"
)

func TestFallbackPayload(t *testing.T) {
	delta := game.Sanitize(FallbackPayload())

	assert.NotEmpty(t, delta.Narrative)
	assert.Len(t, delta.Choices, 3)
	assert.Len(t, delta.ChoiceIcons, 3)
	assert.Equal(t, 0, delta.HealthDelta)
	assert.Empty(t, delta.ItemsGained)
	assert.Empty(t, delta.ItemsLost)
	assert.False(t, delta.IsComplete)
	assert.Equal(t, "The Crossroads", delta.MapHint.Location)
}

func TestMockOracleDefaults(t *testing.T) {
	m := NewMockOracle()

	payload, err := m.Open(context.Background(), game.ThemeFantasy, "Ada", "en")
	require.NoError(t, err)
	assert.Equal(t, FallbackPayload(), payload)

	s := game.NewSession("Ada", game.ThemeFantasy, "en")
	payload, err = m.Continue(context.Background(), s, "go north")
	require.NoError(t, err)
	assert.Equal(t, FallbackPayload(), payload)

	require.NoError(t, m.Ready(context.Background()))
	assert.Len(t, m.OpenCalls, 1)
	require.Len(t, m.ContinueCalls, 1)
	assert.Equal(t, "go north", m.ContinueCalls[0].Action)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripFences(tt.input))
		})
	}
}
