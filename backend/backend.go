// Package backend defines the byte store the cache blob is persisted to.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for a key. The cache writes a single key
// (the storage key) and treats whatever it reads back there as its own; other
// writers must not share that key.
package backend

import (
	"context"
)

// Backend is a minimal durable-ish byte store.
// Must be safe for concurrent use.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value without expiry. Expiry is decided per entry by the
	// cache, not by the store.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key. Missing keys are not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
