package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/snapshot"
	"github.com/nhle/tasktracker/internal/storage"
	"github.com/nhle/tasktracker/internal/store"
)

func TestLoginCreatesFreshUser(t *testing.T) {
	st := store.New()
	m := NewManager(st, snapshot.New(storage.NewMemory(), "", nil), nil)
	assert.Equal(t, LoggedOut, m.State())

	u := m.Login(model.NewUser{Name: "Ada", Email: "ada@example.com"})
	_, err := uuid.Parse(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.Equal(t, LoggedIn, m.State())
	assert.Equal(t, "logged in", m.State().String())

	again := m.Login(model.NewUser{Name: "Ada", Email: "ada@example.com"})
	assert.NotEqual(t, u.ID, again.ID, "each login mints a new identity")
	assert.Equal(t, again.ID, m.CurrentUser().ID)
}

func TestLogoutClearsSnapshotThenState(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	snaps := snapshot.New(mem, "", nil)
	st := store.New()
	m := NewManager(st, snaps, nil)

	u := m.Login(model.NewUser{Name: "Ada"})
	now := time.Now().UTC()
	st.AddTag(model.Tag{ID: "g", Name: "work", Color: model.ColorBlue, CreatedAt: now, UpdatedAt: now})
	st.AddTask(model.Task{ID: "t", Title: "x", UserID: u.ID, CreatedAt: now, UpdatedAt: now})
	st.AddComment(model.Comment{ID: "c", TaskID: "t", Comment: "hi", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, snaps.Save(ctx, st.Snapshot()))

	require.NoError(t, m.Logout(ctx))

	_, ok := snaps.Load(ctx)
	assert.False(t, ok, "snapshot removed")
	assert.Equal(t, LoggedOut, m.State())
	assert.Empty(t, st.Tasks())
	assert.Empty(t, st.Comments())
	assert.Len(t, st.Tags(), 1, "tags are shared across users")
}

type brokenBackend struct{ storage.None }

func (brokenBackend) Remove(context.Context, string) error { return assert.AnError }

func TestLogoutClearsStateEvenWhenStorageFails(t *testing.T) {
	st := store.New()
	m := NewManager(st, snapshot.New(brokenBackend{}, "", nil), nil)
	m.Login(model.NewUser{Name: "Ada"})

	err := m.Logout(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, LoggedOut, m.State())
}
