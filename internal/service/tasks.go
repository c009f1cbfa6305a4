package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/store"
)

const keyTasks = "tasks"

// FetchTasks returns every task sorted by manual order.
func (s *Service) FetchTasks(ctx context.Context) ([]model.Task, error) {
	return fetch(ctx, s, keyTasks, []Family{FamilyTask},
		func() []model.Task {
			return s.store.QueryTasks(store.TaskFilter{SortBy: store.SortByOrder})
		},
		cloneTasks,
	)
}

// QueryTasks returns tasks matching f. Filtered results are not cached.
func (s *Service) QueryTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, error) {
	if err := s.query(ctx); err != nil {
		return nil, err
	}
	return s.store.QueryTasks(f), nil
}

// FetchTask returns a single task.
func (s *Service) FetchTask(ctx context.Context, id string) (model.Task, error) {
	if err := s.query(ctx); err != nil {
		return model.Task{}, err
	}
	return s.store.Task(id)
}

// CreateTask adds a task after the last one in manual order. An empty
// UserID means the logged-in user.
func (s *Service) CreateTask(ctx context.Context, nt model.NewTask) (model.Task, error) {
	title := strings.TrimSpace(nt.Title)
	if title == "" {
		return model.Task{}, invalid("task title must not be empty")
	}
	priority := model.DefaultPriority
	if nt.Priority != nil {
		if !nt.Priority.Valid() {
			return model.Task{}, invalid("unknown priority %d", *nt.Priority)
		}
		priority = *nt.Priority
	}
	if nt.UserID == "" {
		if _, ok := s.currentUserID(); !ok {
			return model.Task{}, ErrNotLoggedIn
		}
	}

	var created model.Task
	err := s.mutate(ctx, "create task", []Family{FamilyTask}, func() (bool, error) {
		// The session may have ended during the latency wait.
		userID := nt.UserID
		if userID == "" {
			id, ok := s.currentUserID()
			if !ok {
				return false, ErrNotLoggedIn
			}
			userID = id
		}
		now := s.stamp()
		t := model.Task{
			ID:          uuid.New().String(),
			Title:       title,
			Completed:   false,
			Priority:    priority,
			UserID:      userID,
			Description: nt.Description,
			TagIDs:      append([]string{}, nt.TagIDs...),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if nt.DueDate != nil {
			d := nt.DueDate.UTC()
			t.DueDate = &d
		}
		created = s.store.AppendTask(t)
		return true, nil
	})
	return created, err
}

// UpdateTask merges patch into the task. A missing id yields ErrNotFound.
func (s *Service) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return model.Task{}, invalid("task title must not be empty")
		}
		patch.Title = &title
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return model.Task{}, invalid("unknown priority %d", *patch.Priority)
	}

	var updated model.Task
	err := s.mutate(ctx, "update task", []Family{FamilyTask}, func() (bool, error) {
		t, err := s.store.UpdateTask(id, patch)
		if err != nil {
			return false, err
		}
		updated = t
		return true, nil
	})
	return updated, err
}

// ToggleTask flips a task's completed flag.
func (s *Service) ToggleTask(ctx context.Context, id string) (model.Task, error) {
	var toggled model.Task
	err := s.mutate(ctx, "toggle task", []Family{FamilyTask}, func() (bool, error) {
		t, err := s.store.ToggleTask(id)
		if err != nil {
			return false, err
		}
		toggled = t
		return true, nil
	})
	return toggled, err
}

// DeleteTask removes a task and its comments. Deleting a missing id is
// not an error and reports false.
func (s *Service) DeleteTask(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutate(ctx, "delete task", []Family{FamilyTask, FamilyComment}, func() (bool, error) {
		err := s.store.RemoveTask(id)
		if store.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		deleted = true
		return true, nil
	})
	return deleted, err
}

// ReorderTasks replaces the task list with tasks, numbering their order by
// position.
func (s *Service) ReorderTasks(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	var reordered []model.Task
	err := s.mutate(ctx, "reorder tasks", []Family{FamilyTask}, func() (bool, error) {
		reordered = s.store.ReorderTasks(tasks)
		return true, nil
	})
	return reordered, err
}

// MoveTask shifts the task with id by delta positions in manual order and
// persists the new order. Moving past either end clamps.
func (s *Service) MoveTask(ctx context.Context, id string, delta int) ([]model.Task, error) {
	var tasks []model.Task
	err := s.mutate(ctx, "move task", []Family{FamilyTask}, func() (bool, error) {
		var (
			moved bool
			err   error
		)
		tasks, moved, err = s.store.MoveTask(id, delta)
		return moved, err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
