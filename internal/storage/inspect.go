package storage

import (
	"context"
	"fmt"
)

// Info describes what a backend currently holds.
type Info struct {
	// Listable is false when the backend cannot enumerate keys.
	Listable bool
	Keys     []string
}

// Inspect pings b when it supports it and lists its keys when it can.
func Inspect(ctx context.Context, b Backend) (Info, error) {
	if p, ok := b.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return Info{}, fmt.Errorf("pinging backend: %w", err)
		}
	}
	l, ok := b.(Lister)
	if !ok {
		return Info{}, nil
	}
	keys, err := l.Keys(ctx)
	if err != nil {
		return Info{}, err
	}
	return Info{Listable: true, Keys: keys}, nil
}
