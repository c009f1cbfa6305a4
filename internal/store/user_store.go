package store

import (
	"github.com/nhle/tasktracker/internal/model"
)

// User returns the current user, or nil when logged out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser makes u the current user.
func (s *Store) SetUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// UpdateUser merges patch into the current user and stamps updatedAt.
func (s *Store) UpdateUser(patch model.UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return model.User{}, notFound("user", "current")
	}
	u := patch.Apply(*s.user)
	u.UpdatedAt = s.stamp(s.user.UpdatedAt)
	s.user = &u
	return u, nil
}

// ClearUser forgets the current user.
func (s *Store) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
