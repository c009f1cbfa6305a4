package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasktracker/internal/theme"
)

const appTitle = "Task Tracker"

// Header is the state shown in the top bar.
type Header struct {
	UserName string
	Notice   string
	// SaveErr is the error of the last snapshot write, nil when it succeeded.
	SaveErr error
}

// SaveStatus is the label for the last snapshot write.
func (h Header) SaveStatus() string {
	if h.SaveErr != nil {
		return "⚠ not saved"
	}
	return "saved"
}

// Layout splits the terminal into a one-line header, the active view and a
// one-line status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentSize returns the space left for the active view.
func (l Layout) ContentSize() (width, height int) {
	return l.Width, max(l.Height-2, 0)
}

// RenderHeader shows the title and signed-in user on the left and the save
// status on the right. A notice, when set, sits next to the title.
func (l Layout) RenderHeader(h Header) string {
	left := appTitle
	if h.UserName != "" {
		left += " · " + h.UserName
	}
	if h.Notice != "" {
		left += "  " + h.Notice
	}

	right := h.SaveStatus()
	style := theme.HeaderStyle
	if h.SaveErr != nil {
		style = style.Foreground(theme.ColorYellow)
	}
	return l.bar(theme.HeaderStyle, left, style.Render(right))
}

// RenderStatusBar shows key hints on the left and the active filters on
// the right.
func (l Layout) RenderStatusBar(hints, filters string) string {
	right := ""
	if filters != "" {
		right = theme.StatusBarStyle.Render(filters)
	}
	return l.bar(theme.StatusBarStyle, hints, right)
}

// bar renders left with style and pads it so the already rendered right
// part ends at the terminal edge.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	gap := max(l.Width-lipgloss.Width(leftRendered)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, right)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
