package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasktracker/internal/keys"
	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/theme"
)

// CommentService is the part of the service facade the detail view uses.
type CommentService interface {
	FetchTask(ctx context.Context, id string) (model.Task, error)
	FetchTags(ctx context.Context) ([]model.Tag, error)
	FetchTaskComments(ctx context.Context, taskID string) ([]model.Comment, error)
	AddComment(ctx context.Context, nc model.NewComment) (model.Comment, error)
	UpdateComment(ctx context.Context, id string, patch model.CommentPatch) (model.Comment, error)
	DeleteComment(ctx context.Context, id string) (bool, error)
}

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// DetailLoadedMsg carries the task, its resolved tags and its comments.
type DetailLoadedMsg struct {
	Task     model.Task
	Tags     []model.Tag
	Comments []model.Comment
	Err      error
}

type commentSavedMsg struct{ err error }

// Model shows one task with its comment thread.
type Model struct {
	svc      CommentService
	keys     *keys.KeyMap
	taskID   string
	task     *model.Task
	tags     []model.Tag
	comments []model.Comment
	selected int
	input    textinput.Model
	editing  bool
	editID   string
	status   string
	viewport viewport.Model
	now      func() time.Time
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(svc CommentService, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-3)
	vp.Style = lipgloss.NewStyle()

	ti := textinput.New()
	ti.Placeholder = "write a comment..."
	ti.Prompt = "› "
	ti.Width = width - 4

	return Model{
		svc:      svc,
		keys:     keys,
		input:    ti,
		viewport: vp,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// Open starts showing the task with the given id.
func (m *Model) Open(taskID string) tea.Cmd {
	m.taskID = taskID
	m.task = nil
	m.comments = nil
	m.selected = 0
	m.status = ""
	m.loading = true
	return m.Reload()
}

// Reload refetches the task and its comments.
func (m Model) Reload() tea.Cmd {
	if m.taskID == "" {
		return nil
	}
	svc, id := m.svc, m.taskID
	return func() tea.Msg {
		ctx := context.Background()
		t, err := svc.FetchTask(ctx, id)
		if err != nil {
			return DetailLoadedMsg{Err: err}
		}
		tags, err := svc.FetchTags(ctx)
		if err != nil {
			return DetailLoadedMsg{Err: err}
		}
		comments, err := svc.FetchTaskComments(ctx, id)
		if err != nil {
			return DetailLoadedMsg{Err: err}
		}
		return DetailLoadedMsg{Task: t, Tags: t.ResolveTags(tags), Comments: comments}
	}
}

// Editing reports whether the comment input owns keyboard input.
func (m Model) Editing() bool {
	return m.editing
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.task = nil
			m.status = fmt.Sprintf("Error: %v", msg.Err)
			return m, nil
		}
		t := msg.Task
		m.task = &t
		m.tags = msg.Tags
		m.comments = msg.Comments
		if m.selected >= len(m.comments) {
			m.selected = max(len(m.comments)-1, 0)
		}
		m.refresh()
		return m, nil

	case commentSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.New), key.Matches(msg, m.keys.Comments):
		if m.task == nil {
			return m, nil
		}
		m.editing = true
		m.editID = ""
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editID = c.ID
		m.input.SetValue(c.Comment)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		return m, m.deleteComment(c.ID)

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.comments)-1 {
			m.selected++
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.editing = false
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		if m.editID != "" {
			return m, m.updateComment(m.editID, text)
		}
		return m, m.addComment(text)

	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) selectedComment() (model.Comment, bool) {
	if m.selected < 0 || m.selected >= len(m.comments) {
		return model.Comment{}, false
	}
	return m.comments[m.selected], true
}

func (m Model) addComment(text string) tea.Cmd {
	svc, id := m.svc, m.taskID
	return func() tea.Msg {
		_, err := svc.AddComment(context.Background(), model.NewComment{TaskID: id, Comment: text})
		return commentSavedMsg{err: err}
	}
}

func (m Model) updateComment(id, text string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.UpdateComment(context.Background(), id, model.CommentPatch{Comment: &text})
		return commentSavedMsg{err: err}
	}
}

func (m Model) deleteComment(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.DeleteComment(context.Background(), id)
		return commentSavedMsg{err: err}
	}
}

// View renders the detail view.
func (m Model) View() string {
	centered := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return centered.Render("Loading task...")
	}
	if m.task == nil {
		if m.status != "" {
			return centered.Render(m.status)
		}
		return centered.Render("No task selected")
	}

	footer := theme.HelpStyle.Render("n comment | e edit | d delete | esc back")
	if m.editing {
		footer = m.input.View()
	} else if m.status != "" {
		footer = theme.ErrorStyle.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), "", footer)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := task.Title
	if task.Completed {
		title = theme.CompletedStyle.Render(title)
	} else {
		title = titleStyle.Render(title)
	}
	sections = append(sections, title)

	badges := []string{
		theme.PriorityStyle(task.Priority).Render(theme.PriorityIcon(task.Priority) + " " + task.Priority.String()),
	}
	if task.DueDate != nil {
		now := m.now()
		u := model.DateUrgency(task.DueDate, now)
		badges = append(badges, theme.UrgencyStyle(u).Render(model.FormatDueDate(task.DueDate, now)))
	}
	for _, t := range m.tags {
		badges = append(badges, theme.TagStyle(t.Color).Render(t.Name))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	sections = append(sections,
		fmt.Sprintf("%s   %s", metaStyle.Render("Created:"), valStyle.Render(task.CreatedAt.Local().Format("2006-01-02 15:04"))),
		fmt.Sprintf("%s   %s", metaStyle.Render("Updated:"), valStyle.Render(task.UpdatedAt.Local().Format("2006-01-02 15:04"))),
	)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, headerStyle.Render("Description"))
	if task.Description != nil && *task.Description != "" {
		sections = append(sections, *task.Description)
	} else {
		sections = append(sections, theme.DimmedStyle.Italic(true).Render("No description"))
	}

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Comments (%d)", len(m.comments))), "")

	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for i, c := range m.comments {
		stamp := timeStyle.Render(c.CreatedAt.Local().Format("2006-01-02 15:04"))
		if c.UpdatedAt.After(c.CreatedAt) {
			stamp += timeStyle.Render(" (edited)")
		}
		body := c.Comment
		if i == m.selected {
			body = theme.SelectedItemStyle.Render(body)
		} else {
			body = "  " + body
		}
		sections = append(sections, stamp, body, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 3
	m.input.Width = width - 4
	m.refresh()
}
