package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/99designs/keyring"
)

const keyringServiceName = "tasktracker"

// KeyringBackend stores each key as one item in the OS keychain, falling
// back to an encrypted file store when no system keychain is available.
type KeyringBackend struct {
	ring keyring.Keyring
}

// NewKeyringBackend wraps an already opened keyring.
func NewKeyringBackend(ring keyring.Keyring) *KeyringBackend {
	return &KeyringBackend{ring: ring}
}

// OpenKeyringBackend opens the system keyring. fileDir is used by the
// file backend fallback.
func OpenKeyringBackend(fileDir string) (*KeyringBackend, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("tasktracker-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringBackend(ring), nil
}

// Get retrieves the item stored under key.
func (b *KeyringBackend) Get(_ context.Context, key string) ([]byte, error) {
	item, err := b.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("getting keyring item %q: %w", key, err)
	}
	return item.Data, nil
}

// Set stores data as the item under key.
func (b *KeyringBackend) Set(_ context.Context, key string, data []byte) error {
	err := b.ring.Set(keyring.Item{
		Key:         key,
		Data:        data,
		Label:       "Task tracker state",
		Description: "task tracker snapshot",
	})
	if err != nil {
		return fmt.Errorf("setting keyring item %q: %w", key, err)
	}
	return nil
}

// Remove deletes the item under key.
func (b *KeyringBackend) Remove(_ context.Context, key string) error {
	err := b.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing keyring item %q: %w", key, err)
	}
	return nil
}

// Keys lists the item keys held by the keyring.
func (b *KeyringBackend) Keys(context.Context) ([]string, error) {
	keys, err := b.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keyring items: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op; keyrings hold no connection.
func (b *KeyringBackend) Close() error {
	return nil
}
