package store

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/nhle/tasktracker/internal/model"
)

// Sort keys accepted by TaskFilter.SortBy.
const (
	SortByOrder     = "order"
	SortByPriority  = "priority"
	SortByDueDate   = "dueDate"
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByTitle     = "title"
)

// SortKeys lists the sort keys in the order the UI cycles through them.
var SortKeys = []string{SortByOrder, SortByPriority, SortByDueDate, SortByCreatedAt, SortByUpdatedAt, SortByTitle}

// TaskFilter controls filtering, sorting, and pagination for task queries.
// Zero values mean "no constraint".
type TaskFilter struct {
	Query     string          // case-insensitive substring of title or description
	Fuzzy     bool            // match Query fuzzily against titles instead
	Priority  *model.Priority // exact level
	Completed *bool           // completion state
	TagIDs    []string        // any of these tags (OR logic)
	Due       model.Urgency   // due-date bucket; UrgencyNone selects tasks without a due date
	Now       time.Time       // reference time for Due; zero means the store clock
	SortBy    string          // one of the SortBy* keys; empty means order, or match score when fuzzy
	SortDesc  bool
	Limit     int
	Offset    int
}

// QueryTasks returns the tasks matching f.
func (s *Store) QueryTasks(f TaskFilter) []model.Task {
	s.mu.RLock()
	tasks := cloneTasks(s.tasks)
	now := f.Now
	if now.IsZero() {
		now = s.now()
	}
	s.mu.RUnlock()

	query := strings.TrimSpace(f.Query)
	fuzzyRanked := f.Fuzzy && query != ""
	if fuzzyRanked {
		tasks = fuzzyMatch(tasks, query)
	}

	matched := tasks[:0]
	for _, t := range tasks {
		if !fuzzyRanked && query != "" && !containsFold(t, query) {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if len(f.TagIDs) > 0 && !slices.ContainsFunc(f.TagIDs, t.HasTag) {
			continue
		}
		if f.Due != "" && model.DateUrgency(t.DueDate, now) != f.Due {
			continue
		}
		matched = append(matched, t)
	}

	if !fuzzyRanked || f.SortBy != "" {
		sortTasks(matched, f.SortBy, f.SortDesc)
	}

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []model.Task{}
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched
}

func containsFold(t model.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

type taskTitles []model.Task

func (t taskTitles) String(i int) string { return t[i].Title }
func (t taskTitles) Len() int            { return len(t) }

// fuzzyMatch keeps tasks whose title fuzzily matches query, best first.
func fuzzyMatch(tasks []model.Task, query string) []model.Task {
	matches := fuzzy.FindFrom(query, taskTitles(tasks))
	out := make([]model.Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, tasks[m.Index])
	}
	return out
}

func sortTasks(tasks []model.Task, by string, desc bool) {
	less := func(a, b model.Task) int {
		switch by {
		case SortByPriority:
			return a.Priority.Compare(b.Priority)
		case SortByDueDate:
			return compareDue(a.DueDate, b.DueDate)
		case SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case SortByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		default:
			return 0
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		c := less(tasks[i], tasks[j])
		if c == 0 {
			// Manual order breaks ties and is the default key.
			c = tasks[i].Order - tasks[j].Order
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareDue orders tasks without a due date after every dated task.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
