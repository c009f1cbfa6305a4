package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/storage"
)

func sampleSnapshot() model.Snapshot {
	now := time.Date(2026, 4, 1, 12, 30, 0, 0, time.UTC)
	due := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	user := &model.User{ID: "u1", Name: "Ada", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now}

	snap := model.EmptySnapshot()
	snap.User = model.UserState{CurrentUser: user, IsAuthenticated: true}
	snap.Tasks.Items = []model.Task{
		{ID: "t1", Title: "write", Priority: model.PriorityGhostPepper, UserID: "u1", DueDate: &due,
			TagIDs: []string{"g1"}, Order: 0, CreatedAt: now, UpdatedAt: now},
		{ID: "t2", Title: "read", Priority: model.PriorityMinnesotan, UserID: "u1",
			Description: model.Ptr("chapter 2"), TagIDs: []string{}, Order: 1, CreatedAt: now, UpdatedAt: now},
	}
	snap.Tags.Items = []model.Tag{{ID: "g1", Name: "work", Color: model.ColorTeal, CreatedAt: now, UpdatedAt: now}}
	snap.Comments.Items = []model.Comment{{ID: "c1", TaskID: "t1", Comment: "hi", UserID: "u1", CreatedAt: now, UpdatedAt: now}}
	return snap
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory(), "", nil)

	want := sampleSnapshot()
	want.Tasks.Loading = true
	want.Tasks.Error = model.Ptr("stale error")
	require.NoError(t, s.Save(ctx, want))

	got, ok := s.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, want.User, got.User)
	assert.Equal(t, want.Tasks.Items, got.Tasks.Items)
	assert.Equal(t, want.Tags.Items, got.Tags.Items)
	assert.Equal(t, want.Comments.Items, got.Comments.Items)
	assert.False(t, got.Tasks.Loading, "loading is never persisted")
	assert.Nil(t, got.Tasks.Error, "error is never persisted")
}

func TestSaveWritesFixedKeyWithTransientFieldsReset(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := New(mem, "", nil)

	snap := sampleSnapshot()
	snap.Tags.Loading = true
	require.NoError(t, s.Save(ctx, snap))

	data, err := mem.Get(ctx, model.DefaultSnapshotKey)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, section := range []string{"tasks", "tags", "comments"} {
		assert.Equal(t, false, raw[section]["loading"], section)
		assert.Nil(t, raw[section]["error"], section)
	}
	assert.Equal(t, true, raw["user"]["isAuthenticated"])
}

func TestLoadWithoutSnapshot(t *testing.T) {
	_, ok := New(storage.NewMemory(), "", nil).Load(context.Background())
	assert.False(t, ok)
}

func TestLoadMalformedSnapshot(t *testing.T) {
	ctx := context.Background()
	cases := []string{
		`not json`,
		`[1,2,3]`,
		`{"tasks":{"items":[{"id":1}]}}`,
		`{"tasks":{"items":[{"id":"t","dueDate":"someday"}]}}`,
		``,
	}
	for _, c := range cases {
		mem := storage.NewMemory()
		require.NoError(t, mem.Set(ctx, model.DefaultSnapshotKey, []byte(c)))

		_, ok := New(mem, "", nil).Load(ctx)
		assert.False(t, ok, "input %q", c)
	}
}

func TestLoadDefaultsMissingSections(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, model.DefaultSnapshotKey, []byte(`{}`)))

	got, ok := New(mem, "", nil).Load(ctx)
	require.True(t, ok)
	assert.Nil(t, got.User.CurrentUser)
	assert.False(t, got.User.IsAuthenticated)
	assert.NotNil(t, got.Tasks.Items)
	assert.Empty(t, got.Tasks.Items)
	assert.NotNil(t, got.Tags.Items)
	assert.NotNil(t, got.Comments.Items)
}

func TestLoadBackfillsLegacyTasks(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	legacy := `{
		"user": {"currentUser": null, "isAuthenticated": true},
		"tasks": {"items": [
			{"id": "a", "title": "first", "priority": "ghost-pepper", "tagIds": null, "order": 7},
			{"id": "b", "title": "second", "dueDate": "2026-02-14"},
			{"id": "c", "title": "third", "priority": 2, "tagIds": ["x"]}
		], "loading": true, "error": "boom"},
		"tags": {"items": [
			{"id": "x", "name": "old", "color": "#8B5CF6"},
			{"id": "y", "name": "none"}
		]}
	}`
	require.NoError(t, mem.Set(ctx, model.DefaultSnapshotKey, []byte(legacy)))

	got, ok := New(mem, "", nil).Load(ctx)
	require.True(t, ok)

	tasks := got.Tasks.Items
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, i, task.Order, "order renumbered by position")
		assert.NotNil(t, task.TagIDs)
	}
	assert.Equal(t, model.PriorityGhostPepper, tasks[0].Priority)
	assert.Equal(t, model.DefaultPriority, tasks[1].Priority)
	assert.Equal(t, model.PriorityMinnesotan, tasks[2].Priority)
	require.NotNil(t, tasks[1].DueDate)
	assert.Equal(t, "2026-02-14", tasks[1].DueDate.Format(time.DateOnly))

	assert.Equal(t, model.ColorPurple, got.Tags.Items[0].Color)
	assert.Equal(t, model.ColorBlue, got.Tags.Items[1].Color)

	assert.False(t, got.User.IsAuthenticated, "no user means not authenticated")
	assert.False(t, got.Tasks.Loading)
	assert.Nil(t, got.Tasks.Error)
}

func TestLoadKeepsOrderWhenEveryTaskHasOne(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	doc := `{"tasks":{"items":[{"id":"a","order":5},{"id":"b","order":2}]}}`
	require.NoError(t, mem.Set(ctx, model.DefaultSnapshotKey, []byte(doc)))

	got, ok := New(mem, "", nil).Load(ctx)
	require.True(t, ok)
	assert.Equal(t, 5, got.Tasks.Items[0].Order)
	assert.Equal(t, 2, got.Tasks.Items[1].Order)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory(), "custom-key", nil)

	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	require.NoError(t, s.Clear(ctx))
	_, ok := s.Load(ctx)
	assert.False(t, ok)

	assert.NoError(t, s.Clear(ctx), "clearing twice is fine")
}

func TestUnavailableStorage(t *testing.T) {
	ctx := context.Background()
	s := New(storage.None{}, "", nil)

	assert.NoError(t, s.Save(ctx, sampleSnapshot()))
	_, ok := s.Load(ctx)
	assert.False(t, ok)
	assert.NoError(t, s.Clear(ctx))
}

type failingBackend struct{ storage.None }

func (failingBackend) Set(context.Context, string, []byte) error {
	return assert.AnError
}

func TestSaveFailureIsReturned(t *testing.T) {
	s := New(failingBackend{}, "", nil)
	err := s.Save(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, assert.AnError)
}
