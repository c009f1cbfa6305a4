package tasklist

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasktracker/internal/keys"
	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/store"
)

type fakeService struct {
	tasks   []model.Task
	tags    []model.Tag
	filters []store.TaskFilter
	toggled []string
	deleted []string
	moved   map[string]int
}

func (f *fakeService) QueryTasks(_ context.Context, flt store.TaskFilter) ([]model.Task, error) {
	f.filters = append(f.filters, flt)
	return f.tasks, nil
}

func (f *fakeService) FetchTags(context.Context) ([]model.Tag, error) { return f.tags, nil }

func (f *fakeService) ToggleTask(_ context.Context, id string) (model.Task, error) {
	f.toggled = append(f.toggled, id)
	return model.Task{ID: id, Title: "t", Completed: true}, nil
}

func (f *fakeService) DeleteTask(_ context.Context, id string) (bool, error) {
	f.deleted = append(f.deleted, id)
	return true, nil
}

func (f *fakeService) MoveTask(_ context.Context, id string, delta int) ([]model.Task, error) {
	if f.moved == nil {
		f.moved = map[string]int{}
	}
	f.moved[id] += delta
	return f.tasks, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := New(svc, keys.DefaultKeyMap(), 80, 24)
	msg, ok := m.LoadTasks()().(TasksLoadedMsg)
	require.True(t, ok)
	m, _ = m.Update(msg)
	return m
}

func sampleService() *fakeService {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &fakeService{
		tasks: []model.Task{
			{ID: "a", Title: "Write report", TagIDs: []string{"t1"}, CreatedAt: now, UpdatedAt: now},
			{ID: "b", Title: "Buy milk", Order: 1, CreatedAt: now, UpdatedAt: now},
		},
		tags: []model.Tag{{ID: "t1", Name: "work", Color: model.ColorBlue}},
	}
}

func TestLoadTasksPopulatesList(t *testing.T) {
	m := loaded(t, sampleService())

	items := m.list.Items()
	require.Len(t, items, 2)
	first := items[0].(TaskItem)
	assert.Equal(t, "a", first.Task.ID)
	require.Len(t, first.Tags, 1)
	assert.Equal(t, "work", first.Tags[0].Name)
}

func TestToggleAndDeleteUseSelection(t *testing.T) {
	svc := sampleService()
	m := loaded(t, svc)

	m, cmd := m.Update(runes("x"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Equal(t, []string{"a"}, svc.toggled)
	assert.Equal(t, "Completed t", m.Status())

	_, cmd = m.Update(runes("d"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"a"}, svc.deleted)
}

func TestCyclePriorityFilters(t *testing.T) {
	svc := sampleService()
	m := loaded(t, svc)

	m, cmd := m.Update(runes("p"))
	require.NotNil(t, cmd)
	cmd()

	last := svc.filters[len(svc.filters)-1]
	require.NotNil(t, last.Priority)
	assert.Equal(t, model.PriorityGhostPepper, *last.Priority)
	assert.Contains(t, m.FilterSummary(), "priority: Ghost Pepper")
}

func TestMoveRequiresManualOrder(t *testing.T) {
	svc := sampleService()
	m := loaded(t, svc)

	m, cmd := m.Update(runes("J"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, svc.moved["a"])

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, store.SortByPriority, svc.filters[len(svc.filters)-1].SortBy)

	m, cmd = m.Update(runes("K"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Switch to manual order to move tasks", m.Status())
}

func TestSearchSetsFuzzyQuery(t *testing.T) {
	svc := sampleService()
	m := loaded(t, svc)

	m, _ = m.Update(runes("/"))
	require.True(t, m.Searching())
	m, _ = m.Update(runes("rep"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.False(t, m.Searching())
	last := svc.filters[len(svc.filters)-1]
	assert.Equal(t, "rep", last.Query)
	assert.True(t, last.Fuzzy)
}

func TestClearFiltersKeepsSort(t *testing.T) {
	svc := sampleService()
	m := loaded(t, svc)

	m.SetDueFilter(model.UrgencyOverdue)
	m.ToggleHideDone()
	m.ClearFilters()()

	last := svc.filters[len(svc.filters)-1]
	assert.Equal(t, store.TaskFilter{SortBy: store.SortByOrder}, last)
}

func TestRenderRowShowsDueLabel(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -2)
	row := renderRow(TaskItem{
		Task: model.Task{Title: "Pay rent", DueDate: &due},
		Now:  now,
	})
	assert.Contains(t, row, "Pay rent")
	assert.Contains(t, row, "Overdue Feb 27")
}
