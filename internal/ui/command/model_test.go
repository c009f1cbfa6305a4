package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	m := New(80, 24)

	tests := []struct {
		input string
		want  string
	}{
		{input: "tags", want: "tags"},
		{input: "  Logout ", want: "logout"},
		{input: "ovrd", want: "overdue"},
		{input: "nwt", want: "new task"},
		{input: "zzz", want: ""},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Resolve(tt.input))
		})
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("quit")})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("quit"), cmd())
	assert.Empty(t, m.input.Value())
}
