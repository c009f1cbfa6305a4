package store

import (
	"sort"

	"github.com/nhle/tasktracker/internal/model"
)

// Tasks returns every task in collection order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, notFound("task", id)
	}
	return s.tasks[i].Clone(), nil
}

// AddTask appends t as given. Ids and timestamps are the caller's job.
func (s *Store) AddTask(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}
	s.tasks = append(s.tasks, t)
}

// AppendTask appends t with its order set one past the highest in use.
func (s *Store) AppendTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}
	t.Order = s.nextTaskOrder()
	s.tasks = append(s.tasks, t)
	return t.Clone()
}

// NextTaskOrder returns one past the highest order in use, or 0 when there
// are no tasks.
func (s *Store) NextTaskOrder() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextTaskOrder()
}

func (s *Store) nextTaskOrder() int {
	if len(s.tasks) == 0 {
		return 0
	}
	highest := s.tasks[0].Order
	for _, t := range s.tasks[1:] {
		if t.Order > highest {
			highest = t.Order
		}
	}
	return highest + 1
}

// UpdateTask merges patch into the task and stamps updatedAt.
func (s *Store) UpdateTask(id string, patch model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, notFound("task", id)
	}
	t := patch.Apply(s.tasks[i])
	t.UpdatedAt = s.stamp(s.tasks[i].UpdatedAt)
	s.tasks[i] = t
	return t.Clone(), nil
}

// ToggleTask flips the completed flag.
func (s *Store) ToggleTask(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, notFound("task", id)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.tasks[i].UpdatedAt = s.stamp(s.tasks[i].UpdatedAt)
	return s.tasks[i].Clone(), nil
}

// RemoveTask deletes the task's comments, then the task itself.
func (s *Store) RemoveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return notFound("task", id)
	}

	kept := s.comments[:0:0]
	for _, c := range s.comments {
		if c.TaskID != id {
			kept = append(kept, c)
		}
	}
	s.comments = kept

	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return nil
}

// SetTasks replaces the whole task collection.
func (s *Store) SetTasks(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = cloneTasks(tasks)
}

// ClearTasks empties the task collection.
func (s *Store) ClearTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = []model.Task{}
}

// ReorderTasks replaces the task collection with list, setting each task's
// order to its index and stamping updatedAt. Tasks absent from list are
// dropped.
func (s *Store) ReorderTasks(list []model.Task) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := cloneTasks(list)
	for i := range tasks {
		tasks[i].Order = i
		if tasks[i].TagIDs == nil {
			tasks[i].TagIDs = []string{}
		}
		tasks[i].UpdatedAt = s.stamp(tasks[i].UpdatedAt)
	}
	s.tasks = tasks
	return cloneTasks(tasks)
}

// MoveTask shifts the task with id by delta positions in manual order,
// clamping at either end, and renumbers every task by its new position.
// Only tasks whose order changed are stamped. It returns the tasks in
// manual order and whether anything moved.
func (s *Store) MoveTask(id string, delta int) ([]model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := cloneTasks(s.tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})
	from := -1
	for i := range ordered {
		if ordered[i].ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, false, notFound("task", id)
	}
	to := min(max(from+delta, 0), len(ordered)-1)
	if to == from {
		return ordered, false, nil
	}

	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]model.Task{moved}, ordered[to:]...)...)
	for i := range ordered {
		if ordered[i].Order != i {
			ordered[i].Order = i
			ordered[i].UpdatedAt = s.stamp(ordered[i].UpdatedAt)
		}
	}
	s.tasks = ordered
	return cloneTasks(ordered), true, nil
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
