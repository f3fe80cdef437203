package storage

import (
	"context"
	"errors"
)

// ErrNotFound is an exported constant or variable used by the storage backends.
var ErrNotFound = errors.New("storage: key not found")

// ErrUnavailable is an exported constant or variable used by the storage backends.
var ErrUnavailable = errors.New("storage: backend unavailable")

// KV defines a public type used by goAuthClient APIs.
//
// KV instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. The value is durable once Set returns nil.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
