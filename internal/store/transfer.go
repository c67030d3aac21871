package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
	"github.com/roach88/rollcall/internal/schema"
)

var (
	// ErrNotJSONFile is returned by Import for a file without a .json extension.
	ErrNotJSONFile = errors.New("file must have a .json extension")

	// ErrBackupFailed is returned when Import cannot take its safety backup.
	ErrBackupFailed = errors.New("could not create backup before import")

	ErrNoGroups         = errors.New("file contains no groups")
	ErrNoStudents       = errors.New("file contains no students")
	ErrInvalidGroupName = errors.New("invalid group name")
	ErrSaveFailed       = errors.New("failed to save imported data")
)

// ImportError reports a failed import after its rollback ran.
type ImportError struct {
	Reason   error
	Restored bool
}

func (e *ImportError) Error() string {
	if e.Restored {
		return fmt.Sprintf("import failed: %v (previous data restored)", e.Reason)
	}
	return fmt.Sprintf("import failed: %v (previous data could not be restored)", e.Reason)
}

func (e *ImportError) Unwrap() error { return e.Reason }

// Critical reports whether the rollback failed and the live state may be lost.
func (e *ImportError) Critical() bool { return !e.Restored }

// ExportFileName returns the suggested export file name for now.
func ExportFileName(now time.Time) string {
	return "attendance_backup_" + now.UTC().Format(model.DateLayout) + ".json"
}

// Export writes the current state as indented JSON. Corrupted primary
// state is written as stored so it can be repaired by hand.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	d, raw, _ := s.load(ctx)
	if s.Corrupted() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		buf.WriteByte('\n')
		if _, err := buf.WriteTo(w); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the live state with payload. The current state is backed
// up first; on any failure the backup is restored and the returned
// *ImportError says whether that worked. The backup slot is cleared either
// way.
func (s *Store) Import(ctx context.Context, filename string, payload []byte) error {
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		s.metrics.Import("rejected")
		return ErrNotJSONFile
	}

	op := s.beginOperation(ctx, "import")
	defer s.endOperation(ctx, op)

	log := s.log.With(zap.String("operation", op.ID), zap.String("file", filepath.Base(filename)))

	if !s.CreateBackup(ctx) {
		s.metrics.Import("rejected")
		return ErrBackupFailed
	}

	d, err := s.decodeImport(payload)
	if err == nil && !s.replace(ctx, d) {
		err = ErrSaveFailed
	}
	if err != nil {
		log.Error("import failed, restoring backup", zap.Error(err))
		restored := s.RestoreFromBackup(ctx)
		s.RemoveBackup(ctx)
		if restored {
			s.metrics.Import("restored")
		} else {
			log.Error("could not restore backup after failed import")
			s.metrics.Import("critical")
		}
		return &ImportError{Reason: err, Restored: restored}
	}

	s.RemoveBackup(ctx)
	s.metrics.Import("imported")
	log.Info("data imported",
		zap.Int("groups", len(d.Groups)), zap.Int("students", len(d.Students)))

	if s.onImport != nil {
		s.onImport()
	}
	return nil
}

func (s *Store) decodeImport(payload []byte) (*model.Data, error) {
	if err := schema.Validate(payload); err != nil {
		s.logInvalid(err)
		return nil, fmt.Errorf("invalid data structure: %w", err)
	}

	var d model.Data
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if len(d.Groups) == 0 {
		return nil, ErrNoGroups
	}
	if !slices.ContainsFunc(d.Groups, func(g model.Group) bool { return len(g.Members) > 0 }) {
		return nil, ErrNoStudents
	}

	seen := make(map[string]bool, len(d.Groups))
	for i := range d.Groups {
		name := model.NormalizeName(d.Groups[i].Name)
		if name == "" {
			return nil, fmt.Errorf("%w: group name is empty", ErrInvalidGroupName)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q appears more than once", ErrInvalidGroupName, name)
		}
		seen[name] = true
		d.Groups[i].Name = name
	}

	if report := Repair(&d, s.log); report.Repaired() {
		s.log.Info("imported state repaired",
			zap.Int("group_members", report.GroupMembersRemoved),
			zap.Int("attendance_entries", report.AttendanceRemoved),
			zap.Bool("counter_fixed", report.CounterFixed))
	}
	return &d, nil
}

// Operation is the marker left in the session tier while an import runs.
type Operation struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	StartedAt time.Time `json:"startedAt"`
}

func (s *Store) beginOperation(ctx context.Context, kind string) Operation {
	op := Operation{ID: s.newToken(), Kind: kind, StartedAt: s.clock.Now().UTC()}
	if s.session == nil {
		return op
	}

	payload, err := json.Marshal(op)
	if err != nil {
		s.log.Error("failed to serialize operation marker", zap.Error(err))
		return op
	}
	if err := s.session.Set(ctx, OperationKey, payload); err != nil {
		s.log.Warn("failed to set operation marker", zap.String("operation", op.ID), zap.Error(err))
	}
	return op
}

func (s *Store) endOperation(ctx context.Context, op Operation) {
	if s.session == nil {
		return
	}
	if err := s.session.Delete(ctx, OperationKey); err != nil {
		s.log.Warn("failed to clear operation marker", zap.String("operation", op.ID), zap.Error(err))
	}
}

// CheckPendingOperations reports a marker left behind by an interrupted
// operation and clears it.
func (s *Store) CheckPendingOperations(ctx context.Context) (Operation, bool) {
	if s.session == nil {
		return Operation{}, false
	}

	raw, ok, err := s.session.Get(ctx, OperationKey)
	if err != nil {
		s.log.Error("failed to read operation marker", zap.Error(err))
		return Operation{}, false
	}
	if !ok {
		return Operation{}, false
	}

	var op Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		s.log.Warn("unreadable operation marker", zap.Error(err))
	}
	s.log.Warn("found interrupted operation",
		zap.String("operation", op.ID), zap.String("kind", op.Kind), zap.Time("started_at", op.StartedAt))

	s.endOperation(ctx, op)
	return op, true
}
