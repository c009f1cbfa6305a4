// Package store holds the normalized in-memory application state: one
// collection each for tasks, tags and comments plus the current user.
//
// Entities reference each other by id only. Compound removals clean up
// referencing entities before the referenced one, so a sequence cut short
// can leave an orphan but never a dangling reference.
package store

import (
	"sync"
	"time"

	"github.com/nhle/tasktracker/internal/model"
)

// Store is safe for concurrent use. Every read returns copies, so callers
// may keep or modify results freely.
type Store struct {
	mu sync.RWMutex

	tasks    []model.Task
	tags     []model.Tag
	comments []model.Comment
	user     *model.User

	now       func() time.Time
	lastStamp time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		tasks:    []model.Task{},
		tags:     []model.Tag{},
		comments: []model.Comment{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp returns an updatedAt value later than both prev and any stamp
// handed out before. Callers must hold the write lock.
func (s *Store) stamp(prev time.Time) time.Time {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

// Snapshot copies the full state into its persisted shape.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.EmptySnapshot()
	if s.user != nil {
		u := *s.user
		snap.User = model.UserState{CurrentUser: &u, IsAuthenticated: true}
	}
	snap.Tasks.Items = cloneTasks(s.tasks)
	snap.Tags.Items = append([]model.Tag{}, s.tags...)
	snap.Comments.Items = append([]model.Comment{}, s.comments...)
	return snap
}

// Restore replaces the full state with snap, one collection at a time.
func (s *Store) Restore(snap model.Snapshot) {
	if snap.User.IsAuthenticated && snap.User.CurrentUser != nil {
		s.SetUser(*snap.User.CurrentUser)
	} else {
		s.ClearUser()
	}
	s.SetTags(snap.Tags.Items)
	s.SetTasks(snap.Tasks.Items)
	s.SetComments(snap.Comments.Items)
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
