package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/rollcall/internal/kv"
	"github.com/roach88/rollcall/internal/store"
)

type fakeSource struct {
	payload []byte
	own     []byte
	err     error
}

func (f *fakeSource) Snapshot(context.Context) ([]byte, bool, error) {
	return f.payload, f.payload != nil, f.err
}

func (f *fakeSource) IsOwnWrite(p []byte) bool {
	return f.own != nil && string(p) == string(f.own)
}

func TestCheck_ForeignChangeNotifies(t *testing.T) {
	src := &fakeSource{payload: []byte(`{"a":1}`)}
	calls := 0
	w := New("rollcall.db", src, func() { calls++ }, WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()
	w.Prime(ctx)

	assert.False(t, w.Check(ctx), "unchanged payload")

	src.payload = []byte(`{"a":2}`)
	assert.True(t, w.Check(ctx))
	assert.False(t, w.Check(ctx), "same change reported once")
	assert.Equal(t, 1, calls)
}

func TestCheck_IgnoresOwnWrite(t *testing.T) {
	src := &fakeSource{payload: []byte(`{"a":1}`)}
	calls := 0
	w := New("rollcall.db", src, func() { calls++ })
	ctx := context.Background()
	w.Prime(ctx)

	src.payload = []byte(`{"a":2}`)
	src.own = src.payload
	assert.False(t, w.Check(ctx))
	assert.Zero(t, calls)
}

func TestCheck_ReadErrorIsNotAChange(t *testing.T) {
	src := &fakeSource{payload: []byte(`{}`)}
	w := New("rollcall.db", src, nil)
	ctx := context.Background()
	w.Prime(ctx)

	src.err = errors.New("disk on fire")
	src.payload = []byte(`{"x":1}`)
	assert.False(t, w.Check(ctx))

	src.err = nil
	assert.True(t, w.Check(ctx), "nil listener is allowed")
}

func TestRun_DetectsWriteFromAnotherStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.db")
	log := zaptest.NewLogger(t)

	openStore := func() *store.Store {
		db, err := kv.OpenSQLite(path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return store.New(db, nil, store.WithLogger(log))
	}
	local := openStore()
	remote := openStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	local.Load(ctx)

	var changes atomic.Int32
	w := New(path, local, func() { changes.Add(1) }, WithLogger(log))
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)

	d := remote.Load(ctx)
	d.Groups.Add("Remote")
	require.True(t, remote.Save(ctx, d))

	require.Eventually(t, func() bool { return changes.Load() > 0 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "rollcall.db"), &fakeSource{}, nil)

	err := w.Run(context.Background())
	assert.Error(t, err)
}

var _ Source = (*store.Store)(nil)
