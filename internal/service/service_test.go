package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/service"
	"github.com/nhle/tasktracker/internal/session"
	"github.com/nhle/tasktracker/internal/snapshot"
	"github.com/nhle/tasktracker/internal/storage"
	"github.com/nhle/tasktracker/internal/store"
	"github.com/nhle/tasktracker/internal/testutil"
)

// tickingClock advances one second on every reading.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *storage.Memory
	svc     *service.Service
	clock   *tickingClock
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.backend = storage.NewMemory()
	suite.clock = &tickingClock{t: time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)}
	suite.svc = testutil.NewTestService(suite.T(), suite.backend, service.WithClock(suite.clock.Now))
}

// reload builds a fresh Service over the same backend, as a restart would.
func (suite *ServiceTestSuite) reload() *service.Service {
	return testutil.NewTestService(suite.T(), suite.backend)
}

func (suite *ServiceTestSuite) loadSnapshot() model.Snapshot {
	snap, ok := snapshot.New(suite.backend, "", nil).Load(suite.ctx)
	suite.Require().True(ok, "a snapshot should be stored")
	return snap
}

func (suite *ServiceTestSuite) login() model.User {
	u, err := suite.svc.Login(suite.ctx, model.NewUser{Name: "Ada", Email: "ada@example.com"})
	suite.Require().NoError(err)
	return u
}

func (suite *ServiceTestSuite) createTask(title string) model.Task {
	task, err := suite.svc.CreateTask(suite.ctx, model.NewTask{Title: title})
	suite.Require().NoError(err)
	return task
}

func (suite *ServiceTestSuite) TestCreateThenCompleteTask() {
	task, err := suite.svc.CreateTask(suite.ctx, model.NewTask{
		Title:    "Buy milk",
		Priority: model.Ptr(model.PriorityJalapeno),
		UserID:   "u1",
		TagIDs:   []string{},
	})
	suite.Require().NoError(err)

	_, err = uuid.Parse(task.ID)
	suite.NoError(err)
	suite.False(task.Completed)
	suite.Equal(task.CreatedAt, task.UpdatedAt)
	suite.Equal("u1", task.UserID)
	suite.Equal(0, task.Order)
	suite.NotNil(task.TagIDs)

	done, err := suite.svc.UpdateTask(suite.ctx, task.ID, model.TaskPatch{Completed: model.Ptr(true)})
	suite.Require().NoError(err)
	suite.True(done.Completed)
	suite.True(done.UpdatedAt.After(task.UpdatedAt))
	suite.Equal(task.ID, done.ID)
	suite.Equal("Buy milk", done.Title)
	suite.Equal(task.CreatedAt, done.CreatedAt)

	stored := suite.loadSnapshot()
	suite.Require().Len(stored.Tasks.Items, 1)
	suite.True(stored.Tasks.Items[0].Completed)
}

func (suite *ServiceTestSuite) TestCreateTaskDefaults() {
	u := suite.login()
	first := suite.createTask("one")
	second := suite.createTask("two")

	suite.Equal(model.DefaultPriority, first.Priority)
	suite.Equal(0, first.Order)
	suite.Equal(1, second.Order)
	suite.Equal(u.ID, first.UserID, "tasks default to the logged-in user")
	suite.Nil(first.DueDate)
	suite.Nil(first.Description)
}

func (suite *ServiceTestSuite) TestCreateTaskValidation() {
	_, err := suite.svc.CreateTask(suite.ctx, model.NewTask{Title: "   ", UserID: "u1"})
	suite.ErrorIs(err, service.ErrValidation)

	_, err = suite.svc.CreateTask(suite.ctx, model.NewTask{Title: "x"})
	suite.ErrorIs(err, service.ErrNotLoggedIn)

	_, err = suite.svc.CreateTask(suite.ctx, model.NewTask{Title: "x", UserID: "u1", Priority: model.Ptr(model.Priority(9))})
	suite.ErrorIs(err, service.ErrValidation)

	_, ok := snapshot.New(suite.backend, "", nil).Load(suite.ctx)
	suite.False(ok, "rejected input is never persisted")
}

func (suite *ServiceTestSuite) TestUpdateMissingTaskIsNotFound() {
	_, err := suite.svc.UpdateTask(suite.ctx, "missing", model.TaskPatch{Title: model.Ptr("x")})
	suite.ErrorIs(err, service.ErrNotFound)
	suite.True(store.IsNotFound(err))

	_, err = suite.svc.UpdateTask(suite.ctx, "missing", model.TaskPatch{Title: model.Ptr(" ")})
	suite.ErrorIs(err, service.ErrValidation)
}

func (suite *ServiceTestSuite) TestDeleteTaskIsIdempotent() {
	suite.login()
	task := suite.createTask("temp")

	deleted, err := suite.svc.DeleteTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.True(deleted)

	deleted, err = suite.svc.DeleteTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.False(deleted)

	tasks, err := suite.svc.FetchTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(tasks)
	suite.Empty(suite.loadSnapshot().Tasks.Items)
}

func (suite *ServiceTestSuite) TestDeleteTaskCascadesComments() {
	suite.login()
	keep := suite.createTask("keep")
	drop := suite.createTask("drop")
	_, err := suite.svc.AddComment(suite.ctx, model.NewComment{TaskID: drop.ID, Comment: "bye"})
	suite.Require().NoError(err)
	_, err = suite.svc.AddComment(suite.ctx, model.NewComment{TaskID: keep.ID, Comment: "stay"})
	suite.Require().NoError(err)

	_, err = suite.svc.DeleteTask(suite.ctx, drop.ID)
	suite.Require().NoError(err)

	comments := suite.loadSnapshot().Comments.Items
	suite.Require().Len(comments, 1)
	suite.Equal(keep.ID, comments[0].TaskID)

	thread, err := suite.svc.FetchTaskComments(suite.ctx, drop.ID)
	suite.Require().NoError(err)
	suite.Empty(thread)
}

func (suite *ServiceTestSuite) TestDeleteTagStripsTasks() {
	suite.login()
	work, err := suite.svc.CreateTag(suite.ctx, model.NewTag{Name: "work", Color: model.ColorRed})
	suite.Require().NoError(err)
	home, err := suite.svc.CreateTag(suite.ctx, model.NewTag{Name: "home"})
	suite.Require().NoError(err)
	suite.Equal(model.DefaultTagColor, home.Color)

	task, err := suite.svc.CreateTask(suite.ctx, model.NewTask{Title: "x", TagIDs: []string{work.ID, home.ID}})
	suite.Require().NoError(err)

	deleted, err := suite.svc.DeleteTag(suite.ctx, work.ID)
	suite.Require().NoError(err)
	suite.True(deleted)

	got, err := suite.svc.FetchTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{home.ID}, got.TagIDs)

	tags, err := suite.svc.FetchTags(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tags, 1)
	suite.Equal("home", tags[0].Name)

	deleted, err = suite.svc.DeleteTag(suite.ctx, work.ID)
	suite.NoError(err)
	suite.False(deleted)
}

func (suite *ServiceTestSuite) TestUpdateTag() {
	tag, err := suite.svc.CreateTag(suite.ctx, model.NewTag{Name: "work", Color: "#10B981"})
	suite.Require().NoError(err)
	suite.Equal(model.ColorGreen, tag.Color)

	updated, err := suite.svc.UpdateTag(suite.ctx, tag.ID, model.TagPatch{Color: model.Ptr(model.ColorPink)})
	suite.Require().NoError(err)
	suite.Equal("work", updated.Name)
	suite.Equal(model.ColorPink, updated.Color)
	suite.True(updated.UpdatedAt.After(tag.UpdatedAt))

	_, err = suite.svc.CreateTag(suite.ctx, model.NewTag{Name: ""})
	suite.ErrorIs(err, service.ErrValidation)
}

func (suite *ServiceTestSuite) TestReorderPersists() {
	suite.login()
	t1 := suite.createTask("one")
	t2 := suite.createTask("two")
	t3 := suite.createTask("three")

	_, err := suite.svc.ReorderTasks(suite.ctx, []model.Task{t3, t1, t2})
	suite.Require().NoError(err)

	restarted := suite.reload()
	tasks, err := restarted.FetchTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 3)
	suite.Equal([]string{t3.ID, t1.ID, t2.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	for i, task := range tasks {
		suite.Equal(i, task.Order)
	}
}

func (suite *ServiceTestSuite) TestMoveTask() {
	suite.login()
	t1 := suite.createTask("one")
	t2 := suite.createTask("two")
	t3 := suite.createTask("three")

	tasks, err := suite.svc.MoveTask(suite.ctx, t3.ID, -1)
	suite.Require().NoError(err)
	suite.Equal([]string{t1.ID, t3.ID, t2.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})

	tasks, err = suite.svc.MoveTask(suite.ctx, t1.ID, -5)
	suite.Require().NoError(err)
	suite.Equal(t1.ID, tasks[0].ID, "moving past the top clamps")

	_, err = suite.svc.MoveTask(suite.ctx, "missing", 1)
	suite.ErrorIs(err, service.ErrNotFound)
}

func (suite *ServiceTestSuite) TestMoveKeepsConcurrentCreates() {
	suite.login()
	first := suite.createTask("first")
	suite.createTask("second")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := suite.svc.CreateTask(suite.ctx, model.NewTask{Title: "parallel"})
			suite.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := suite.svc.MoveTask(suite.ctx, first.ID, 1)
			suite.NoError(err)
		}()
	}
	wg.Wait()

	tasks, err := suite.svc.FetchTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(tasks, 12)
	suite.Len(suite.loadSnapshot().Tasks.Items, 12)
}

func (suite *ServiceTestSuite) TestCommentsOldestFirst() {
	suite.login()
	task := suite.createTask("discuss")
	for _, text := range []string{"first", "second", "third"} {
		_, err := suite.svc.AddComment(suite.ctx, model.NewComment{TaskID: task.ID, Comment: text})
		suite.Require().NoError(err)
	}

	thread, err := suite.svc.FetchTaskComments(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(thread, 3)
	suite.Equal("first", thread[0].Comment)
	suite.Equal("third", thread[2].Comment)

	edited, err := suite.svc.UpdateComment(suite.ctx, thread[1].ID, model.CommentPatch{Comment: model.Ptr("2nd")})
	suite.Require().NoError(err)
	suite.Equal("2nd", edited.Comment)

	deleted, err := suite.svc.DeleteComment(suite.ctx, thread[0].ID)
	suite.Require().NoError(err)
	suite.True(deleted)

	thread, err = suite.svc.FetchTaskComments(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(thread, 2)
	suite.Equal("2nd", thread[0].Comment)

	_, err = suite.svc.AddComment(suite.ctx, model.NewComment{TaskID: "missing", Comment: "x"})
	suite.ErrorIs(err, service.ErrNotFound)
	_, err = suite.svc.AddComment(suite.ctx, model.NewComment{TaskID: task.ID, Comment: " "})
	suite.ErrorIs(err, service.ErrValidation)
}

func (suite *ServiceTestSuite) TestLogoutThenLoad() {
	suite.login()
	task := suite.createTask("private")
	_, err := suite.svc.AddComment(suite.ctx, model.NewComment{TaskID: task.ID, Comment: "note"})
	suite.Require().NoError(err)
	_, err = suite.svc.CreateTag(suite.ctx, model.NewTag{Name: "shared"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.svc.Logout(suite.ctx))
	suite.Equal(session.LoggedOut, suite.svc.Session())

	snap := suite.loadSnapshot()
	suite.Empty(snap.Tasks.Items)
	suite.Empty(snap.Comments.Items)
	suite.False(snap.User.IsAuthenticated)
	suite.Nil(snap.User.CurrentUser)
	suite.Len(snap.Tags.Items, 1, "tags survive logout")

	restarted := suite.reload()
	suite.Equal(session.LoggedOut, restarted.Session())
	user, err := restarted.FetchCurrentUser(suite.ctx)
	suite.Require().NoError(err)
	suite.Nil(user)
}

func (suite *ServiceTestSuite) TestLoginSurvivesRestart() {
	u := suite.login()

	restarted := suite.reload()
	suite.Equal(session.LoggedIn, restarted.Session())
	got, err := restarted.FetchCurrentUser(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(u.ID, got.ID)
}

func (suite *ServiceTestSuite) TestUpdateUser() {
	_, err := suite.svc.UpdateUser(suite.ctx, model.UserPatch{Name: model.Ptr("Bob")})
	suite.ErrorIs(err, service.ErrNotLoggedIn)

	u := suite.login()
	updated, err := suite.svc.UpdateUser(suite.ctx, model.UserPatch{Name: model.Ptr("Ada L.")})
	suite.Require().NoError(err)
	suite.Equal(u.ID, updated.ID)
	suite.Equal("Ada L.", updated.Name)
	suite.Equal("ada@example.com", updated.Email)
	suite.True(updated.UpdatedAt.After(u.UpdatedAt))

	_, err = suite.svc.Login(suite.ctx, model.NewUser{Name: ""})
	suite.ErrorIs(err, service.ErrValidation)
}

func (suite *ServiceTestSuite) TestQueryCacheInvalidation() {
	suite.login()
	suite.createTask("one")

	var mu sync.Mutex
	var events []service.Invalidation
	unsubscribe := suite.svc.Subscribe(func(inv service.Invalidation) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, inv)
	})
	defer unsubscribe()

	first, err := suite.svc.FetchTasks(suite.ctx)
	suite.Require().NoError(err)
	_, err = suite.svc.FetchTasks(suite.ctx)
	suite.Require().NoError(err)

	stats := suite.svc.CacheStats()
	suite.Equal(uint64(1), stats.Hits)

	first[0].Title = "mutated by caller"
	again, err := suite.svc.FetchTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("one", again[0].Title, "cached results are copies")

	suite.createTask("two")
	mu.Lock()
	suite.Require().Len(events, 1)
	suite.True(events[0].Has(service.FamilyTask))
	suite.False(events[0].Has(service.FamilyTag))
	mu.Unlock()

	tasks, err := suite.svc.FetchTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(tasks, 2, "invalidated query refetches")

	_, err = suite.svc.FetchTags(suite.ctx)
	suite.Require().NoError(err)
	_, err = suite.svc.DeleteTag(suite.ctx, "missing")
	suite.Require().NoError(err)
	mu.Lock()
	suite.Len(events, 1, "a no-op delete invalidates nothing")
	mu.Unlock()
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func TestQueryHonorsCancellation(t *testing.T) {
	svc := testutil.NewTestService(t, storage.NewMemory(), service.WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.FetchTags(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMutationCompletesAfterCancel(t *testing.T) {
	backend := storage.NewMemory()
	svc := testutil.NewTestService(t, backend, service.WithLatency(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tag, err := svc.CreateTag(ctx, model.NewTag{Name: "late"})
	require.NoError(t, err)

	snap, ok := snapshot.New(backend, "", nil).Load(context.Background())
	require.True(t, ok)
	require.Len(t, snap.Tags.Items, 1)
	assert.Equal(t, tag.ID, snap.Tags.Items[0].ID)
}

func TestConcurrentFetchesShareOneLoad(t *testing.T) {
	svc := testutil.NewTestService(t, storage.NewMemory(), service.WithLatency(50*time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.FetchTags(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stats := svc.CacheStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(8), stats.Hits+stats.Misses)
}

func TestUnavailableStorageNeverErrors(t *testing.T) {
	svc := testutil.NewTestService(t, storage.None{})
	ctx := context.Background()

	_, err := svc.Login(ctx, model.NewUser{Name: "Ada"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, model.NewTask{Title: "x"})
	require.NoError(t, err)
	assert.NoError(t, svc.PersistError())
	assert.NoError(t, svc.Logout(ctx))
}

type failingBackend struct{ storage.None }

func (failingBackend) Set(context.Context, string, []byte) error { return assert.AnError }

func TestPersistFailureIsNotFatal(t *testing.T) {
	svc := testutil.NewTestService(t, failingBackend{})

	tag, err := svc.CreateTag(context.Background(), model.NewTag{Name: "work"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.PersistError(), assert.AnError)

	tags, err := svc.FetchTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)
}

func TestRestoreBackfilledSnapshot(t *testing.T) {
	backend := storage.NewMemory()
	doc := `{"tasks":{"items":[{"id":"a","title":"A","order":3},{"id":"b","title":"B"}]}}`
	require.NoError(t, backend.Set(context.Background(), model.DefaultSnapshotKey, []byte(doc)))

	svc := testutil.NewTestService(t, backend)
	tasks, err := svc.FetchTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, 0, tasks[0].Order)
	assert.Equal(t, 1, tasks[1].Order)
}

// gatedBackend blocks the first Set after arm until release is closed.
type gatedBackend struct {
	*storage.Memory
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		Memory:  storage.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedBackend) arm() { g.armed.Store(true) }

func (g *gatedBackend) Set(ctx context.Context, key string, data []byte) error {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.Memory.Set(ctx, key, data)
}

// run starts fn and returns a channel closed when it returns.
func run(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

func TestSlowSaveDoesNotOverwriteLaterMutation(t *testing.T) {
	backend := newGatedBackend()
	svc := testutil.NewTestService(t, backend)
	ctx := context.Background()
	_, err := svc.Login(ctx, model.NewUser{Name: "Ada"})
	require.NoError(t, err)

	backend.arm()
	first := run(func() {
		_, err := svc.CreateTask(ctx, model.NewTask{Title: "first"})
		assert.NoError(t, err)
	})
	<-backend.entered
	second := run(func() {
		_, err := svc.CreateTask(ctx, model.NewTask{Title: "second"})
		assert.NoError(t, err)
	})
	time.Sleep(20 * time.Millisecond)
	close(backend.release)
	<-first
	<-second

	tasks, err := svc.FetchTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	snap, ok := snapshot.New(backend, "", nil).Load(ctx)
	require.True(t, ok)
	assert.Len(t, snap.Tasks.Items, 2, "stored state matches memory")
}

func TestLogoutIsLastWriteAfterPendingSave(t *testing.T) {
	backend := newGatedBackend()
	svc := testutil.NewTestService(t, backend)
	ctx := context.Background()
	_, err := svc.Login(ctx, model.NewUser{Name: "Ada"})
	require.NoError(t, err)

	backend.arm()
	create := run(func() {
		_, err := svc.CreateTask(ctx, model.NewTask{Title: "pending"})
		assert.NoError(t, err)
	})
	<-backend.entered
	logout := run(func() {
		assert.NoError(t, svc.Logout(ctx))
	})
	time.Sleep(20 * time.Millisecond)
	close(backend.release)
	<-create
	<-logout

	assert.Equal(t, session.LoggedOut, svc.Session())
	snap, ok := snapshot.New(backend, "", nil).Load(ctx)
	require.True(t, ok)
	assert.False(t, snap.User.IsAuthenticated)
	assert.Empty(t, snap.Tasks.Items)
}

func TestCreateQueuedBehindLogoutLeavesNoTask(t *testing.T) {
	backend := newGatedBackend()
	svc := testutil.NewTestService(t, backend)
	ctx := context.Background()
	_, err := svc.Login(ctx, model.NewUser{Name: "Ada"})
	require.NoError(t, err)

	backend.arm()
	blocker := run(func() {
		_, err := svc.CreateTag(ctx, model.NewTag{Name: "work"})
		assert.NoError(t, err)
	})
	<-backend.entered
	logout := run(func() {
		assert.NoError(t, svc.Logout(ctx))
	})
	time.Sleep(20 * time.Millisecond)
	var createErr error
	create := run(func() {
		_, createErr = svc.CreateTask(ctx, model.NewTask{Title: "orphan"})
	})
	time.Sleep(20 * time.Millisecond)
	close(backend.release)
	<-blocker
	<-logout
	<-create

	if createErr != nil {
		assert.True(t, errors.Is(createErr, service.ErrNotLoggedIn), "unexpected error: %v", createErr)
	}
	tasks, err := svc.FetchTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks, "no task outlives the session")

	snap, ok := snapshot.New(backend, "", nil).Load(ctx)
	require.True(t, ok)
	assert.False(t, snap.User.IsAuthenticated)
	assert.Empty(t, snap.Tasks.Items)
}
