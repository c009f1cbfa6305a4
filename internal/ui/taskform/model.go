package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/theme"
)

const dateLayout = "2006-01-02"

// TaskCreatedMsg is dispatched when a new task is submitted.
type TaskCreatedMsg struct {
	Task model.NewTask
}

// TaskUpdatedMsg is dispatched when an existing task is submitted.
type TaskUpdatedMsg struct {
	ID    string
	Patch model.TaskPatch
}

// TaskFormCancelMsg is dispatched when the user cancels the form.
type TaskFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	dueDate     string
	completed   bool
	tagIDs      []string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	tags     []model.Tag
	loc      *time.Location
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.DefaultPriority},
		loc:    time.Local,
		width:  width,
		height: height,
	}
}

// SetTags sets the tags offered by the tag selector.
func (m *Model) SetTags(tags []model.Tag) {
	m.tags = tags
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{priority: model.DefaultPriority}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	*m.fb = formBindings{
		title:     t.Title,
		priority:  t.Priority,
		completed: t.Completed,
		tagIDs:    append([]string(nil), t.TagIDs...),
	}
	if t.Description != nil {
		m.fb.description = *t.Description
	}
	if t.DueDate != nil {
		m.fb.dueDate = t.DueDate.In(m.loc).Format(dateLayout)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TaskFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(priorityOptions()...).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
	}
	if tagField := m.tagField(); tagField != nil {
		fields = append(fields, tagField)
	}
	if m.editMode {
		fields = append(fields,
			huh.NewConfirm().
				Title("Completed").
				Affirmative("Done").
				Negative("Open").
				Value(&m.fb.completed),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func priorityOptions() []huh.Option[model.Priority] {
	opts := make([]huh.Option[model.Priority], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		opts = append(opts, huh.NewOption(theme.PriorityIcon(p)+" "+p.String(), p))
	}
	return opts
}

func (m *Model) tagField() huh.Field {
	if len(m.tags) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.tags))
	for i, t := range m.tags {
		opts[i] = huh.NewOption(theme.TagStyle(t.Color).Render(t.Name), t.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Tags").
		Options(opts...).
		Value(&m.fb.tagIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	if m.editMode {
		id, patch := m.editID, m.patch()
		return func() tea.Msg { return TaskUpdatedMsg{ID: id, Patch: patch} }
	}
	nt := m.newTask()
	return func() tea.Msg { return TaskCreatedMsg{Task: nt} }
}

func (m Model) newTask() model.NewTask {
	priority := m.fb.priority
	nt := model.NewTask{
		Title:    strings.TrimSpace(m.fb.title),
		Priority: &priority,
		DueDate:  m.dueDate(),
		TagIDs:   append([]string{}, m.fb.tagIDs...),
	}
	if desc := strings.TrimSpace(m.fb.description); desc != "" {
		nt.Description = &desc
	}
	return nt
}

func (m Model) patch() model.TaskPatch {
	title := strings.TrimSpace(m.fb.title)
	priority := m.fb.priority
	completed := m.fb.completed
	p := model.TaskPatch{
		Title:     &title,
		Priority:  &priority,
		Completed: &completed,
		TagIDs:    append([]string{}, m.fb.tagIDs...),
	}
	if due := m.dueDate(); due != nil {
		p.DueDate = due
	} else {
		p.ClearDueDate = true
	}
	if desc := strings.TrimSpace(m.fb.description); desc != "" {
		p.Description = &desc
	} else {
		p.ClearDescription = true
	}
	return p
}

// dueDate parses the due date field as midnight in the form's location.
func (m Model) dueDate() *time.Time {
	s := strings.TrimSpace(m.fb.dueDate)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, m.loc)
	if err != nil {
		return nil
	}
	return &t
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
