package kv

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned when a write would exceed the tier's quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Tier is a byte-oriented key-value area.
type Tier interface {
	// Name identifies the tier in logs and metrics ("sqlite", "memory", "redis").
	Name() string

	// Get returns the value under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the tier's resources.
	Close() error
}
