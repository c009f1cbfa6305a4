package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/nhle/tasktracker/internal/service"
	"github.com/nhle/tasktracker/internal/snapshot"
	"github.com/nhle/tasktracker/internal/storage"
)

// NewTestSQLiteBackend creates an in-memory SQLite backend with all
// migrations applied. It is closed when the test completes.
func NewTestSQLiteBackend(t *testing.T) *storage.SQLiteBackend {
	t.Helper()

	b, err := storage.NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("creating test backend: %v", err)
	}

	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("closing test backend: %v", err)
		}
	})

	return b
}

// NewLogger returns a logger that writes through t.Log.
func NewLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// NewTestService builds a Service over backend with no artificial latency.
func NewTestService(t *testing.T, backend storage.Backend, opts ...service.Option) *service.Service {
	t.Helper()

	logger := NewLogger(t)
	snaps := snapshot.New(backend, "", logger)
	opts = append([]service.Option{service.WithLatency(0), service.WithLogger(logger)}, opts...)
	return service.New(context.Background(), snaps, opts...)
}
