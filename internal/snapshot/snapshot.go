// Package snapshot persists the whole application state as one JSON document
// under a single storage key, and restores it on startup.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/storage"
)

// Store reads and writes the snapshot document.
type Store struct {
	backend storage.Backend
	key     string
	logger  *slog.Logger
}

// New returns a Store writing under key. An empty key means
// model.DefaultSnapshotKey; a nil logger discards output.
func New(backend storage.Backend, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = model.DefaultSnapshotKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if backend == nil {
		backend = storage.None{}
	}
	return &Store{
		backend: backend,
		key:     key,
		logger:  logger.With("component", "snapshot"),
	}
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored snapshot. The boolean is false when storage is
// unavailable, nothing has been saved, or the stored document cannot be
// decoded; none of those are reported as errors.
func (s *Store) Load(ctx context.Context) (model.Snapshot, bool) {
	data, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotExist):
		return model.Snapshot{}, false
	case errors.Is(err, storage.ErrUnavailable):
		s.logger.Debug("storage unavailable, starting empty")
		return model.Snapshot{}, false
	case err != nil:
		s.logger.Warn("loading snapshot", "key", s.key, "error", err)
		return model.Snapshot{}, false
	}

	snap, err := decode(data)
	if err != nil {
		s.logger.Warn("discarding malformed snapshot", "key", s.key, "error", err)
		return model.Snapshot{}, false
	}
	return snap, true
}

// Save writes snap. Transient collection fields are reset before writing.
// A failure is logged and returned; callers must not treat it as fatal.
func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(normalize(snap))
	if err != nil {
		s.logger.Error("encoding snapshot", "error", err)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		s.logger.Error("saving snapshot", "key", s.key, "error", err)
		return fmt.Errorf("saving snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved",
		"tasks", len(snap.Tasks.Items),
		"tags", len(snap.Tags.Items),
		"comments", len(snap.Comments.Items),
		"bytes", len(data),
	)
	return nil
}

// Clear removes the stored snapshot. A missing snapshot is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Remove(ctx, s.key); err != nil {
		s.logger.Error("clearing snapshot", "key", s.key, "error", err)
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// normalize produces the persisted form: non-nil item slices, loading
// false and error null in every collection.
func normalize(snap model.Snapshot) model.Snapshot {
	out := model.Snapshot{User: snap.User}
	out.Tasks.Items = append([]model.Task{}, snap.Tasks.Items...)
	out.Tags.Items = nonNil(snap.Tags.Items)
	out.Comments.Items = nonNil(snap.Comments.Items)
	for i := range out.Tasks.Items {
		if out.Tasks.Items[i].TagIDs == nil {
			out.Tasks.Items[i].TagIDs = []string{}
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
