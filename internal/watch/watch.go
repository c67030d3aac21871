// Package watch notices when another process changes the stored state.
//
// The watcher observes the SQLite database directory with fsnotify. On any
// write to the database or its WAL it re-reads the root-state payload, and
// calls the change listener when the payload differs from the last one seen
// and was not written by this process. It never reconciles edits; the
// listener decides what to do.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source reads the current root-state payload and recognizes this
// process's own writes.
type Source interface {
	Snapshot(ctx context.Context) ([]byte, bool, error)
	IsOwnWrite(payload []byte) bool
}

// Watcher reports foreign changes to the stored state.
type Watcher struct {
	path     string
	src      Source
	onChange func()
	log      *zap.Logger

	last []byte
}

// Option configures New.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a watcher for the database at path.
func New(path string, src Source, onChange func(), opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		src:      src,
		onChange: onChange,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.Named("watch")
	return w
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	// SQLite replaces and appends to sidecar files (-wal, -journal), so the
	// directory is watched rather than the database file itself.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.Prime(ctx)
	w.log.Info("watching for changes", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.Check(ctx)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(w.path))
}

// Prime records the current payload as seen without notifying.
func (w *Watcher) Prime(ctx context.Context) {
	payload, _, err := w.src.Snapshot(ctx)
	if err != nil {
		w.log.Warn("failed to read state", zap.Error(err))
		return
	}
	w.last = payload
}

// Check re-reads the state and calls the listener if it changed in
// another process. Reports whether the listener was called.
func (w *Watcher) Check(ctx context.Context) bool {
	payload, _, err := w.src.Snapshot(ctx)
	if err != nil {
		w.log.Warn("failed to read state", zap.Error(err))
		return false
	}
	if bytes.Equal(payload, w.last) {
		return false
	}
	w.last = payload

	if w.src.IsOwnWrite(payload) {
		w.log.Debug("ignoring own write")
		return false
	}

	w.log.Info("state changed in another session", zap.Int("bytes", len(payload)))
	if w.onChange != nil {
		w.onChange()
	}
	return true
}
