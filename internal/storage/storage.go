// Package storage provides the durable key/value backends the snapshot is
// written to. Each backend stores opaque byte blobs under string keys.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when the key has never been set or has
// been removed.
var ErrNotExist = errors.New("storage: key does not exist")

// ErrUnavailable is returned by every operation of a backend that has no
// durable medium behind it.
var ErrUnavailable = errors.New("storage: unavailable")

// Backend is a durable key/value store.
type Backend interface {
	// Get returns the blob stored under key, or ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any underlying connection.
	Close() error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Pinger is implemented by backends with a connection worth checking.
type Pinger interface {
	Ping(ctx context.Context) error
}

// None is a backend with nothing behind it. Get always reports ErrUnavailable
// and writes are silently dropped.
type None struct{}

func (None) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

func (None) Set(context.Context, string, []byte) error { return nil }

func (None) Remove(context.Context, string) error { return nil }

func (None) Close() error { return nil }
