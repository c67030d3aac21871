package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/kv"
)

// OpenSQLite opens a SQLite tier in a temp dir, closed on cleanup.
func OpenSQLite(t *testing.T, opts ...kv.SQLiteOption) *kv.SQLite {
	t.Helper()
	db, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "rollcall.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// ErrInjected is returned by a FailingTier.
var ErrInjected = errors.New("injected failure")

// FailingTier wraps a tier and fails writes on demand.
type FailingTier struct {
	kv.Tier

	mu         sync.Mutex
	failSets   bool
	failDelete bool
	sets       int
}

// NewFailingTier wraps inner.
func NewFailingTier(inner kv.Tier) *FailingTier {
	return &FailingTier{Tier: inner}
}

// FailSets makes every Set fail with ErrInjected while on is true.
func (f *FailingTier) FailSets(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSets = on
}

// FailDeletes makes every Delete fail with ErrInjected while on is true.
func (f *FailingTier) FailDeletes(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete = on
}

// Sets returns the number of successful writes.
func (f *FailingTier) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func (f *FailingTier) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failSets
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	if err := f.Tier.Set(ctx, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	return nil
}

func (f *FailingTier) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failDelete
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Tier.Delete(ctx, key)
}
