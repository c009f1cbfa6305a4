package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/tasktracker/internal/model"
)

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg model.StorageConfig) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "sqlite":
		b, err := NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "keyring":
		b, err := OpenKeyringBackend(cfg.KeyringDir)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "redis":
		b, err := DialRedisBackend(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		return NewMemory(), nil
	case "none":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
