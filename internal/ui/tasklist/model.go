package tasklist

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasktracker/internal/keys"
	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/store"
	"github.com/nhle/tasktracker/internal/theme"
)

// TaskService is the part of the service facade the task list uses.
type TaskService interface {
	QueryTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, error)
	FetchTags(ctx context.Context) ([]model.Tag, error)
	ToggleTask(ctx context.Context, id string) (model.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
	MoveTask(ctx context.Context, id string, delta int) ([]model.Task, error)
}

// TasksLoadedMsg is sent when tasks have been loaded.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Tags  []model.Tag
	Err   error
}

// SelectedTaskMsg is sent when a user opens a task's detail view.
type SelectedTaskMsg struct {
	TaskID string
}

// EditTaskMsg asks the parent to open the task form. A nil Task means a
// new task.
type EditTaskMsg struct {
	Task *model.Task
	Tags []model.Tag
}

type actionDoneMsg struct {
	status string
	err    error
}

// dueFilters is the cycle order of the due-date filter. The empty value
// means no due-date constraint.
var dueFilters = []model.Urgency{"", model.UrgencyOverdue, model.UrgencyToday, model.UrgencyTomorrow, model.UrgencyUpcoming, model.UrgencyNone}

// Model is the main task list view component.
type Model struct {
	list        list.Model
	svc         TaskService
	keys        *keys.KeyMap
	filter      store.TaskFilter
	tags        []model.Tag
	sortIndex   int
	priorityIdx int // 0 means all, otherwise model.Priorities[priorityIdx-1]
	tagIdx      int // 0 means all, otherwise tags[tagIdx-1]
	dueIdx      int
	hideDone    bool
	searchMode  bool
	searchInput textinput.Model
	status      string
	now         func() time.Time
	width       int
	height      int
}

// New creates a new task list model.
func New(svc TaskService, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		svc:         svc,
		keys:        k,
		filter:      store.TaskFilter{SortBy: store.SortByOrder},
		searchInput: si,
		now:         time.Now,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Searching reports whether the search input owns keyboard input.
func (m Model) Searching() bool {
	return m.searchMode
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.Err)
			return m, nil
		}
		m.tags = msg.Tags
		if m.tagIdx > len(m.tags) {
			m.tagIdx = 0
		}
		now := m.now()
		items := make([]list.Item, len(msg.Tasks))
		for i, task := range msg.Tasks {
			items[i] = TaskItem{Task: task, Tags: task.ResolveTags(msg.Tags), Now: now}
		}
		return m, m.list.SetItems(items)

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Query = strings.TrimSpace(m.searchInput.Value())
		m.filter.Fuzzy = m.filter.Query != ""
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = ""
		m.filter.Fuzzy = false
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	selected, hasSelection := m.list.SelectedItem().(TaskItem)

	switch {
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Comments):
		if !hasSelection {
			return m, nil
		}
		id := selected.Task.ID
		return m, func() tea.Msg { return SelectedTaskMsg{TaskID: id} }

	case key.Matches(msg, m.keys.New):
		tags := m.tags
		return m, func() tea.Msg { return EditTaskMsg{Tags: tags} }

	case key.Matches(msg, m.keys.Edit):
		if !hasSelection {
			return m, nil
		}
		t, tags := selected.Task, m.tags
		return m, func() tea.Msg { return EditTaskMsg{Task: &t, Tags: tags} }

	case key.Matches(msg, m.keys.Toggle):
		if !hasSelection {
			return m, nil
		}
		return m, m.toggle(selected.Task.ID)

	case key.Matches(msg, m.keys.Delete):
		if !hasSelection {
			return m, nil
		}
		return m, m.remove(selected.Task.ID)

	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		if !hasSelection {
			return m, nil
		}
		if m.filter.SortBy != store.SortByOrder || m.filter.Fuzzy {
			m.status = "Switch to manual order to move tasks"
			return m, nil
		}
		delta := 1
		if key.Matches(msg, m.keys.MoveUp) {
			delta = -1
		}
		m.list.Select(min(max(m.list.Index()+delta, 0), len(m.list.Items())-1))
		return m, m.move(selected.Task.ID, delta)

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CyclePriority):
		m.priorityIdx = (m.priorityIdx + 1) % (len(model.Priorities) + 1)
		m.filter.Priority = nil
		if m.priorityIdx > 0 {
			p := model.Priorities[m.priorityIdx-1]
			m.filter.Priority = &p
		}
		return m, m.LoadTasks()

	case key.Matches(msg, m.keys.CycleTag):
		m.tagIdx = (m.tagIdx + 1) % (len(m.tags) + 1)
		m.filter.TagIDs = nil
		if m.tagIdx > 0 {
			m.filter.TagIDs = []string{m.tags[m.tagIdx-1].ID}
		}
		return m, m.LoadTasks()

	case key.Matches(msg, m.keys.CycleDue):
		cmd := m.SetDueFilter(dueFilters[(m.dueIdx+1)%len(dueFilters)])
		return m, cmd

	case key.Matches(msg, m.keys.ToggleDone):
		cmd := m.ToggleHideDone()
		return m, cmd

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(store.SortKeys)
		m.filter.SortBy = store.SortKeys[m.sortIndex]
		m.filter.SortDesc = m.filter.SortBy == store.SortByUpdatedAt || m.filter.SortBy == store.SortByCreatedAt
		return m, m.LoadTasks()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetDueFilter restricts the list to one due-date bucket. The empty
// urgency removes the constraint.
func (m *Model) SetDueFilter(u model.Urgency) tea.Cmd {
	m.dueIdx = max(slices.Index(dueFilters, u), 0)
	m.filter.Due = dueFilters[m.dueIdx]
	return m.LoadTasks()
}

// ToggleHideDone shows or hides completed tasks.
func (m *Model) ToggleHideDone() tea.Cmd {
	m.hideDone = !m.hideDone
	m.filter.Completed = nil
	if m.hideDone {
		open := false
		m.filter.Completed = &open
	}
	return m.LoadTasks()
}

// ClearFilters drops every filter and the search query but keeps the sort.
func (m *Model) ClearFilters() tea.Cmd {
	m.filter = store.TaskFilter{SortBy: m.filter.SortBy, SortDesc: m.filter.SortDesc}
	m.priorityIdx, m.tagIdx, m.dueIdx = 0, 0, 0
	m.hideDone = false
	m.searchInput.Reset()
	return m.LoadTasks()
}

// FilterSummary describes the active sort and filters for the status bar.
func (m Model) FilterSummary() string {
	parts := []string{"sort: " + m.filter.SortBy}
	if m.filter.Priority != nil {
		parts = append(parts, "priority: "+m.filter.Priority.String())
	}
	if m.tagIdx > 0 && m.tagIdx <= len(m.tags) {
		parts = append(parts, "tag: "+m.tags[m.tagIdx-1].Name)
	}
	if m.filter.Due != "" {
		parts = append(parts, "due: "+string(m.filter.Due))
	}
	if m.hideDone {
		parts = append(parts, "open only")
	}
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.filter.Query))
	}
	return strings.Join(parts, " · ")
}

// Status returns the result of the last action, if any.
func (m Model) Status() string {
	return m.status
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

func (m Model) hasFilters() bool {
	return m.filter.Priority != nil ||
		m.filter.Completed != nil ||
		len(m.filter.TagIDs) > 0 ||
		m.filter.Due != "" ||
		m.filter.Query != ""
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.hasFilters() {
		return style.Render("No matching tasks.\nTry adjusting your filters.")
	}
	return style.Render("No tasks yet.\n\nPress n to add one.")
}

// LoadTasks returns a tea.Cmd that queries the service with the current
// filter.
func (m Model) LoadTasks() tea.Cmd {
	filter := m.filter
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := svc.QueryTasks(ctx, filter)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		tags, err := svc.FetchTags(ctx)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks, Tags: tags}
	}
}

func (m Model) toggle(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		t, err := svc.ToggleTask(context.Background(), id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if t.Completed {
			return actionDoneMsg{status: "Completed " + t.Title}
		}
		return actionDoneMsg{status: "Reopened " + t.Title}
	}
}

func (m Model) remove(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.DeleteTask(context.Background(), id)
		return actionDoneMsg{status: "Task deleted", err: err}
	}
}

func (m Model) move(id string, delta int) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.MoveTask(context.Background(), id, delta)
		return actionDoneMsg{err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
