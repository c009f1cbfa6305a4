package service

import (
	"context"
	"strings"

	"github.com/nhle/tasktracker/internal/model"
)

const keyUser = "user"

// FetchCurrentUser returns the logged-in user, or nil when logged out.
func (s *Service) FetchCurrentUser(ctx context.Context) (*model.User, error) {
	return fetch(ctx, s, keyUser, []Family{FamilyUser}, s.store.User, cloneUser)
}

// UpdateUser edits the current user's profile.
func (s *Service) UpdateUser(ctx context.Context, patch model.UserPatch) (model.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.User{}, invalid("name must not be empty")
		}
		patch.Name = &name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		patch.Email = &email
	}
	if s.session.CurrentUser() == nil {
		return model.User{}, ErrNotLoggedIn
	}

	var updated model.User
	err := s.mutate(ctx, "update user", []Family{FamilyUser}, func() (bool, error) {
		u, err := s.store.UpdateUser(patch)
		if err != nil {
			return false, ErrNotLoggedIn
		}
		updated = u
		return true, nil
	})
	return updated, err
}

// Login creates a fresh local identity and makes it current.
func (s *Service) Login(ctx context.Context, nu model.NewUser) (model.User, error) {
	name := strings.TrimSpace(nu.Name)
	if name == "" {
		return model.User{}, invalid("name must not be empty")
	}
	nu.Name = name
	nu.Email = strings.TrimSpace(nu.Email)

	var u model.User
	err := s.mutate(ctx, "login", AllFamilies, func() (bool, error) {
		u = s.session.Login(nu)
		return true, nil
	})
	return u, err
}

// Logout removes the stored snapshot and the user's tasks and comments,
// then persists the logged-out state. Tags survive. Storage failures are
// logged and never block the logout.
func (s *Service) Logout(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	return s.mutate(ctx, "logout", AllFamilies, func() (bool, error) {
		if err := s.session.Logout(ctx); err != nil {
			s.logger.Warn("logout left a stored snapshot behind", "error", err)
		}
		return true, nil
	})
}
