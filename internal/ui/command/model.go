package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/nhle/tasktracker/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Commands the palette completes against.
var Commands = []string{
	"new task",
	"tags",
	"hide completed",
	"clear filters",
	"overdue",
	"today",
	"tomorrow",
	"upcoming",
	"undated",
	"logout",
	"quit",
}

const maxSuggestions = 5

// Model is the command palette view.
type Model struct {
	input    textinput.Model
	commands []string
	width    int
	height   int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:    ti,
		commands: Commands,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		cmd := m.Resolve(m.input.Value())
		m.input.Reset()
		if cmd != "" {
			return m, func() tea.Msg {
				return CommandMsg(cmd)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Resolve maps typed input onto a known command: an exact match wins,
// otherwise the best fuzzy match. Unknown input resolves to "".
func (m Model) Resolve(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	for _, c := range m.commands {
		if c == input {
			return c
		}
	}
	matches := fuzzy.Find(input, m.commands)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func (m Model) suggestions() []string {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m.commands[:min(maxSuggestions, len(m.commands))]
	}
	matches := fuzzy.Find(input, m.commands)
	out := make([]string, 0, maxSuggestions)
	for _, match := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, match.Str)
	}
	return out
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View(), ""}
	for i, s := range m.suggestions() {
		if i == 0 {
			lines = append(lines, theme.SelectedItemStyle.Render(s))
			continue
		}
		lines = append(lines, theme.DimmedStyle.PaddingLeft(2).Render(s))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
