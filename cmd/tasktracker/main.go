package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/nhle/tasktracker/internal/app"
	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/service"
	"github.com/nhle/tasktracker/internal/snapshot"
	"github.com/nhle/tasktracker/internal/storage"
	"github.com/nhle/tasktracker/internal/theme"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", model.DefaultConfigPath(), "path to the YAML config file")
		backend     = flag.String("backend", "", "storage backend override: sqlite, keyring, redis, memory, none")
		initConfig  = flag.Bool("init-config", false, "write the effective config to --config and exit")
		storageInfo = flag.Bool("storage-info", false, "print what the storage backend holds and exit")
		showVersion = flag.BoolP("version", "v", false, "print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tasktracker %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}

	if *initConfig {
		if err := model.SaveConfig(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *configPath)
		os.Exit(0)
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx := context.Background()
	backendImpl, err := storage.Open(ctx, cfg.Storage)
	if *storageInfo {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
			os.Exit(1)
		}
		err = printStorageInfo(ctx, os.Stdout, backendImpl, cfg.Storage)
		backendImpl.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error inspecting storage: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	if err != nil {
		// The tracker still runs without persistence.
		logger.Warn("storage unavailable, continuing in memory only",
			"backend", cfg.Storage.Backend, "error", err)
		backendImpl = storage.None{}
	}
	defer backendImpl.Close()

	snaps := snapshot.New(backendImpl, cfg.Storage.Key, logger)
	svc := service.New(ctx, snaps,
		service.WithLatency(time.Duration(cfg.API.LatencyMS)*time.Millisecond),
		service.WithLogger(logger),
	)

	theme.Apply(cfg.Display.Theme)
	logger.Info("starting", "version", version, "backend", cfg.Storage.Backend)

	p := tea.NewProgram(app.New(svc, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// printStorageInfo reports the backend, the snapshot key and, when the
// backend can list them, the keys it holds.
func printStorageInfo(ctx context.Context, w io.Writer, b storage.Backend, cfg model.StorageConfig) error {
	info, err := storage.Inspect(ctx, b)
	if err != nil {
		return err
	}
	snaps := snapshot.New(b, cfg.Key, nil)
	name := cfg.Backend
	if name == "" {
		name = "sqlite"
	}
	fmt.Fprintf(w, "backend:      %s\n", name)
	fmt.Fprintf(w, "snapshot key: %s\n", snaps.Key())
	if !info.Listable {
		fmt.Fprintln(w, "keys:         (not listable)")
		return nil
	}
	fmt.Fprintf(w, "keys:         %d\n", len(info.Keys))
	for _, k := range info.Keys {
		mark := ""
		if k == snaps.Key() {
			mark = " *"
		}
		fmt.Fprintf(w, "  %s%s\n", k, mark)
	}
	return nil
}

// newLogger writes JSON logs to cfg.File. An empty path discards logs,
// since the terminal belongs to the UI.
func newLogger(cfg model.LogConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	if cfg.File == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h), func() { f.Close() }, nil
}
