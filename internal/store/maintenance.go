package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
)

// QuotaStatus compares the serialized state against the warning threshold.
type QuotaStatus struct {
	Bytes     int64 `json:"bytes"`
	WarnBytes int64 `json:"warnBytes"`
	OK        bool  `json:"ok"`
}

// CheckQuota measures the stored state and warns when it is close to
// what the primary tier can hold.
func (s *Store) CheckQuota(ctx context.Context) QuotaStatus {
	status := QuotaStatus{WarnBytes: s.warnBytes}

	_, payload, _ := s.load(ctx)
	status.Bytes = int64(len(payload))
	status.OK = status.Bytes <= s.warnBytes
	if !status.OK {
		s.log.Warn("state is close to the storage limit",
			zap.Int64("bytes", status.Bytes), zap.Int64("warn_bytes", s.warnBytes))
	}
	return status
}

// CleanupOldData removes attendance dates older than now minus retention
// and returns how many dates were removed. Dates that do not parse are kept.
func (s *Store) CleanupOldData(ctx context.Context, now time.Time, retention time.Duration) int {
	d := s.Load(ctx)
	cutoff := now.Add(-retention)

	removed := 0
	for _, date := range d.Attendance.Dates() {
		t, err := model.ParseDate(date)
		if err != nil || !t.Before(cutoff) {
			continue
		}
		delete(d.Attendance, date)
		removed++
	}

	if removed == 0 {
		return 0
	}
	if !s.Save(ctx, d) {
		s.log.Error("failed to save after cleanup", zap.Int("dates", removed))
		return 0
	}
	s.log.Info("old attendance removed",
		zap.Int("dates", removed), zap.String("cutoff", model.FormatDate(cutoff)))
	return removed
}
