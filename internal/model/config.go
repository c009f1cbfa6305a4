package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. TASKTRACKER_STORAGE_BACKEND.
const EnvPrefix = "TASKTRACKER"

// DefaultSnapshotKey is the storage key the snapshot is written under.
const DefaultSnapshotKey = "smyth-task-state"

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	// Backend is one of "sqlite", "keyring", "redis", "memory" or "none".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Key is the single key the snapshot lives under.
	Key string `mapstructure:"key" yaml:"key"`

	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	KeyringDir  string `mapstructure:"keyring_dir" yaml:"keyring_dir"`
	RedisAddr   string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

// APIConfig tunes the service facade.
type APIConfig struct {
	// LatencyMS is the artificial delay applied to every operation.
	LatencyMS int `mapstructure:"latency_ms" yaml:"latency_ms"`
}

// LogConfig controls the slog output.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// DefaultConfigPath returns ~/.config/tasktracker/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "tasktracker", "config.yaml")
}

// DefaultDataDir returns ~/.local/share/tasktracker.
func DefaultDataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "tasktracker")
}

// DefaultLogPath returns ~/.local/state/tasktracker/tasktracker.log.
func DefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "state", "tasktracker", "tasktracker.log")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend:     "sqlite",
			Key:         DefaultSnapshotKey,
			SQLitePath:  filepath.Join(DefaultDataDir(), "tasktracker.db"),
			KeyringDir:  filepath.Join(DefaultDataDir(), "keyring"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "tasktracker:",
		},
		API: APIConfig{LatencyMS: 100},
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogPath(),
		},
		Display: DisplayConfig{Theme: "default"},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for env overrides to reach Unmarshal.
	d := DefaultConfig()
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.keyring_dir", d.Storage.KeyringDir)
	v.SetDefault("storage.redis_addr", d.Storage.RedisAddr)
	v.SetDefault("storage.redis_prefix", d.Storage.RedisPrefix)
	v.SetDefault("api.latency_ms", d.API.LatencyMS)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("display.theme", d.Display.Theme)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults plus environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = DefaultSnapshotKey
	}
	if cfg.API.LatencyMS < 0 {
		cfg.API.LatencyMS = 0
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("api", cfg.API)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
