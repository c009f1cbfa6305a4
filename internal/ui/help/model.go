package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasktracker/internal/keys"
	"github.com/nhle/tasktracker/internal/theme"
)

const keyColumnWidth = 8

// Model lists the tracker's bindings by section.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	m := Model{keys: keys, help: help.New()}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the app closes the view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders every section, with a note on when reordering is allowed.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).MarginTop(1)

	lines := []string{titleStyle.Render("Keyboard Shortcuts")}
	for _, s := range m.keys.Sections() {
		lines = append(lines, sectionStyle.Render(s.Title))
		for _, b := range s.Bindings {
			lines = append(lines, renderBinding(b))
		}
		if s.Title == "Reorder" {
			lines = append(lines, theme.HelpStyle.Render("  only in manual order with no search active"))
		}
	}
	lines = append(lines, "", m.help.ShortHelpView([]key.Binding{m.keys.Help, m.keys.Back}))

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	k := h.Key
	if pad := keyColumnWidth - lipgloss.Width(k); pad > 0 {
		k += strings.Repeat(" ", pad)
	}
	return "  " + lipgloss.NewStyle().Bold(true).Render(k) + theme.DimmedStyle.Render(h.Desc)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(width-4, 0)
}
