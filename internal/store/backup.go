package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
)

// BackupVersion is written into every backup envelope.
const BackupVersion = "1.0"

type backupEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version"`
}

// BackupInfo describes the backup slot.
type BackupInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Legacy    bool      `json:"legacy"`
	Bytes     int       `json:"bytes"`
}

// CreateBackup copies the current state into the backup slot, overwriting
// any previous backup. Corrupted primary state is copied as stored.
func (s *Store) CreateBackup(ctx context.Context) bool {
	_, state, _ := s.load(ctx)
	if len(state) == 0 {
		s.log.Error("no state to back up")
		s.metrics.Backup("create", false)
		return false
	}

	env := backupEnvelope{
		Data:      state,
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339),
		Version:   BackupVersion,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		s.log.Error("failed to serialize backup", zap.Error(err))
		s.metrics.Backup("create", false)
		return false
	}
	if err := s.primary.Set(ctx, BackupKey, payload); err != nil {
		s.log.Error("failed to create backup", zap.String("tier", s.primary.Name()), zap.Error(err))
		s.metrics.Backup("create", false)
		return false
	}
	s.metrics.Backup("create", true)
	s.log.Info("backup created", zap.String("timestamp", env.Timestamp))
	return true
}

// RestoreFromBackup replaces the live state with the backup slot. Both the
// wrapped envelope and a bare legacy state are accepted. The slot is kept.
func (s *Store) RestoreFromBackup(ctx context.Context) bool {
	raw, ok, err := s.primary.Get(ctx, BackupKey)
	if err != nil {
		s.log.Error("failed to read backup", zap.Error(err))
		s.metrics.Backup("restore", false)
		return false
	}
	if !ok {
		s.log.Warn("no backup to restore")
		s.metrics.Backup("restore", false)
		return false
	}

	payload, _ := unwrapBackup(raw)
	if s.holds(ctx, payload) {
		s.log.Info("live state already matches backup")
		s.metrics.Backup("restore", true)
		return true
	}
	if !s.IsValidDataStructure(payload) {
		s.log.Error("backup is invalid, not restoring")
		s.metrics.Backup("restore", false)
		return false
	}

	var d model.Data
	if err := json.Unmarshal(payload, &d); err != nil {
		s.log.Error("failed to decode backup", zap.Error(err))
		s.metrics.Backup("restore", false)
		return false
	}

	saved := s.replace(ctx, &d)
	s.metrics.Backup("restore", saved)
	if saved {
		s.log.Info("state restored from backup")
	}
	return saved
}

// holds reports whether the primary tier already stores payload, ignoring
// insignificant whitespace.
func (s *Store) holds(ctx context.Context, payload []byte) bool {
	live, ok, err := s.primary.Get(ctx, DataKey)
	if err != nil || !ok {
		return false
	}
	var a, b bytes.Buffer
	if json.Compact(&a, live) != nil || json.Compact(&b, payload) != nil {
		return false
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// RemoveBackup clears the backup slot. Failures are only logged.
func (s *Store) RemoveBackup(ctx context.Context) {
	if err := s.primary.Delete(ctx, BackupKey); err != nil {
		s.log.Error("failed to remove backup", zap.Error(err))
		s.metrics.Backup("remove", false)
		return
	}
	s.metrics.Backup("remove", true)
	s.log.Debug("backup removed")
}

// BackupInfo describes the backup slot. The bool is false when the slot is
// empty or unreadable.
func (s *Store) BackupInfo(ctx context.Context) (BackupInfo, bool) {
	raw, ok, err := s.primary.Get(ctx, BackupKey)
	if err != nil {
		s.log.Error("failed to read backup", zap.Error(err))
		return BackupInfo{}, false
	}
	if !ok {
		return BackupInfo{}, false
	}

	info := BackupInfo{Bytes: len(raw)}
	_, env := unwrapBackup(raw)
	if env == nil {
		info.Legacy = true
		return info, true
	}
	info.Version = env.Version
	if ts, err := time.Parse(time.RFC3339, env.Timestamp); err == nil {
		info.Timestamp = ts
	}
	return info, true
}

// RunBackupSchedule creates a backup every interval until ctx is done.
func (s *Store) RunBackupSchedule(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("backup schedule started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("backup schedule stopped")
			return ctx.Err()
		case <-ticker.C:
			s.CreateBackup(ctx)
		}
	}
}

// unwrapBackup returns the state payload held in a backup slot. A slot is
// an envelope when it carries a non-null data field and a non-empty
// timestamp; anything else is treated as a bare legacy state.
func unwrapBackup(raw []byte) ([]byte, *envelopeFields) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw, nil
	}

	data, hasData := fields["data"]
	if !hasData || isNull(data) {
		return raw, nil
	}

	var ts string
	if err := json.Unmarshal(fields["timestamp"], &ts); err != nil || ts == "" {
		return raw, nil
	}

	env := &envelopeFields{Timestamp: ts}
	if v, ok := fields["version"]; ok {
		_ = json.Unmarshal(v, &env.Version)
	}
	return data, env
}

type envelopeFields struct {
	Timestamp string
	Version   string
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
