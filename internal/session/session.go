// Package session tracks who is using the tracker. There are no
// credentials: logging in just creates a local identity.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/snapshot"
	"github.com/nhle/tasktracker/internal/store"
)

// State is the session state, derived from whether a current user exists.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged in"
	}
	return "logged out"
}

// Manager performs login and logout against the domain store.
type Manager struct {
	store     *store.Store
	snapshots *snapshot.Store
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for user timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a Manager. A nil logger discards output.
func NewManager(st *store.Store, snapshots *snapshot.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{
		store:     st,
		snapshots: snapshots,
		now:       time.Now,
		logger:    logger.With("component", "session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reports whether someone is logged in.
func (m *Manager) State() State {
	if m.store.User() != nil {
		return LoggedIn
	}
	return LoggedOut
}

// CurrentUser returns the logged-in user, or nil.
func (m *Manager) CurrentUser() *model.User {
	return m.store.User()
}

// Login creates a fresh user from nu and makes it current, replacing
// anyone already logged in.
func (m *Manager) Login(nu model.NewUser) model.User {
	now := m.now().UTC()
	u := model.User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Email:     nu.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.store.SetUser(u)
	m.logger.Info("logged in", "user_id", u.ID)
	return u
}

// Logout removes the stored snapshot, then clears comments, tasks and the
// user from the domain store. Tags are shared and survive. The in-memory
// state is cleared even when removing the snapshot fails; that error is
// returned afterwards.
func (m *Manager) Logout(ctx context.Context) error {
	clearErr := m.snapshots.Clear(ctx)

	m.store.ClearComments()
	m.store.ClearTasks()
	m.store.ClearUser()
	m.logger.Info("logged out")

	if clearErr != nil {
		return fmt.Errorf("logging out: %w", clearErr)
	}
	return nil
}
