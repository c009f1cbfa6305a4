// Package service is the asynchronous facade the front-end talks to. Every
// operation waits an artificial latency, queries are served through an
// invalidatable cache, and every mutation persists the full snapshot
// before invalidating the query families it affects.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/session"
	"github.com/nhle/tasktracker/internal/snapshot"
	"github.com/nhle/tasktracker/internal/store"
)

// DefaultLatency matches the delay of the hosted API the tracker mimics.
const DefaultLatency = 100 * time.Millisecond

// Service owns the domain store and everything that reads or writes it.
type Service struct {
	store     *store.Store
	snapshots *snapshot.Store
	session   *session.Manager
	cache     *queryCache

	latency time.Duration
	now     func() time.Time
	logger  *slog.Logger

	// writeMu orders mutations so each save holds the state produced by
	// every mutation applied before it.
	writeMu sync.Mutex

	persistMu  sync.Mutex
	persistErr error
}

// Option configures a Service.
type Option func(*Service)

// WithLatency sets the artificial delay. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(s *Service) {
		s.latency = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces time.Now for creation and update stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New builds a Service and restores state from snapshots when a stored
// snapshot exists.
func New(ctx context.Context, snapshots *snapshot.Store, opts ...Option) *Service {
	s := &Service{
		snapshots: snapshots,
		cache:     newQueryCache(),
		latency:   DefaultLatency,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	base := s.logger
	s.logger = base.With("component", "service")

	s.store = store.New(store.WithClock(s.now))
	if snap, ok := snapshots.Load(ctx); ok {
		s.store.Restore(snap)
		s.logger.Info("state restored",
			"tasks", len(snap.Tasks.Items),
			"tags", len(snap.Tags.Items),
			"authenticated", snap.User.IsAuthenticated,
		)
	}
	s.session = session.NewManager(s.store, snapshots, base, session.WithClock(s.now))
	return s
}

// Session reports whether a user is logged in.
func (s *Service) Session() session.State {
	return s.session.State()
}

// Subscribe registers fn to be called after every invalidation. fn runs on
// the mutating goroutine and must not block. The returned func unsubscribes.
func (s *Service) Subscribe(fn func(Invalidation)) (unsubscribe func()) {
	return s.cache.subscribe(fn)
}

// CacheStats returns the query cache counters.
func (s *Service) CacheStats() CacheStats {
	return s.cache.stats()
}

// PersistError returns the error of the most recent save, or nil when it
// succeeded.
func (s *Service) PersistError() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.persistErr
}

// wait applies the artificial latency, returning early if ctx ends.
func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// persist writes the full state. A failed save is logged by the snapshot
// store and kept for PersistError; the mutation itself still succeeds.
func (s *Service) persist(ctx context.Context) {
	err := s.snapshots.Save(ctx, s.store.Snapshot())
	s.persistMu.Lock()
	s.persistErr = err
	s.persistMu.Unlock()
}

// mutate runs one write operation: latency, apply, persist, invalidate.
// Once issued it ignores cancellation so the change is always persisted.
// apply reports whether anything changed; unchanged state is neither
// persisted nor invalidated. Apply, save and invalidation of one mutation
// complete before the next mutation applies.
func (s *Service) mutate(ctx context.Context, op string, families []Family, apply func() (bool, error)) error {
	ctx = context.WithoutCancel(ctx)
	_ = s.wait(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	changed, err := apply()
	if err != nil {
		s.logger.Debug("mutation rejected", "op", op, "error", err)
		return err
	}
	if !changed {
		return nil
	}
	s.persist(ctx)
	s.cache.invalidate(families...)
	s.logger.Debug("mutation applied", "op", op)
	return nil
}

// query applies the artificial latency for uncached reads.
func (s *Service) query(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wait(ctx)
}

func (s *Service) stamp() time.Time {
	return s.now().UTC()
}

func (s *Service) currentUserID() (string, bool) {
	u := s.store.User()
	if u == nil {
		return "", false
	}
	return u.ID, true
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
