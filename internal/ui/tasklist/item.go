package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/theme"
)

// maxTagChips caps the tag chips drawn on one row.
const maxTagChips = 2

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
	Tags []model.Tag // resolved from Task.TagIDs
	Now  time.Time
}

// FilterValue returns the string used for list filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{i.Task.Priority.String()}
	if due := model.FormatDueDate(i.Task.DueDate, i.Now); due != "" {
		parts = append(parts, due)
	}
	parts = append(parts, relativeTime(i.Task.UpdatedAt, i.Now))
	return strings.Join(parts, " | ")
}

// TaskDelegate implements list.ItemDelegate for rendering task rows.
type TaskDelegate struct{}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	line := renderRow(ti)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = lipgloss.NewStyle().PaddingLeft(2).Render(line)
	}
	fmt.Fprint(w, line)
}

func renderRow(ti TaskItem) string {
	t := ti.Task

	prefix := "○"
	if t.Completed {
		prefix = "✓"
	}

	pri := theme.PriorityStyle(t.Priority).Render(theme.PriorityIcon(t.Priority))

	title := t.Title
	if t.Completed {
		title = theme.CompletedStyle.Render(title)
	}

	var chips []string
	for i, tag := range ti.Tags {
		if i == maxTagChips {
			chips = append(chips, theme.DimmedStyle.Render(fmt.Sprintf("+%d", len(ti.Tags)-maxTagChips)))
			break
		}
		chips = append(chips, theme.TagStyle(tag.Color).Render(tag.Name))
	}

	due := ""
	if !t.Completed {
		if label := model.FormatDueDate(t.DueDate, ti.Now); label != "" {
			due = theme.UrgencyStyle(model.DateUrgency(t.DueDate, ti.Now)).Render(label)
		}
	}

	parts := []string{prefix, pri, title}
	if len(chips) > 0 {
		parts = append(parts, strings.Join(chips, " "))
	}
	if due != "" {
		parts = append(parts, due)
	}
	line := strings.Join(parts, " ")
	if t.Completed {
		line = theme.DimmedStyle.Render(line)
	}
	return line
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
