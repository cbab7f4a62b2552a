// Package interfaces declares the storage contracts the store depends on.
package interfaces

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned (wrapped) by KeyValueStorage.Get for unknown keys.
var ErrKeyNotFound = errors.New("key not found")

// StorageManager provides access to the persisted client state.
// Implementations can be swapped (BadgerDB now, something shared later).
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	Close() error
}

// KeyValueStorage provides basic key-value operations. The store keeps its
// UI preferences (dark mode, selected currency) here.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
