package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
	"github.com/roach88/rollcall/internal/schema"
)

// IsValidDataStructure reports whether raw is an acceptable root state.
// Rejections are logged with the offending field and value.
func (s *Store) IsValidDataStructure(raw []byte) bool {
	err := schema.Validate(raw)
	if err == nil {
		return true
	}
	s.logInvalid(err)
	return false
}

func (s *Store) logInvalid(err error) {
	if se, ok := schema.AsError(err); ok {
		s.log.Warn("invalid data structure",
			zap.String("code", se.Code),
			zap.String("field", se.Field),
			zap.Any("value", se.Value),
			zap.String("reason", se.Message))
	} else {
		s.log.Warn("invalid data structure", zap.Error(err))
	}
}

// IntegrityReport describes what CheckIntegrity found and repaired.
type IntegrityReport struct {
	Valid  bool  `json:"valid"`
	Reason error `json:"-"`

	GroupMembersRemoved int  `json:"groupMembersRemoved"`
	AttendanceRemoved   int  `json:"attendanceRemoved"`
	EmptyDaysRemoved    int  `json:"emptyDaysRemoved"`
	CounterFixed        bool `json:"counterFixed"`
	NextStudentID       int  `json:"nextStudentId"`

	Saved bool `json:"saved"`
}

// Repaired reports whether any repair was applied.
func (r IntegrityReport) Repaired() bool {
	return r.GroupMembersRemoved > 0 || r.AttendanceRemoved > 0 ||
		r.EmptyDaysRemoved > 0 || r.CounterFixed
}

// CheckIntegrity validates the stored state and repairs dangling
// references. Structurally invalid state is reported and left untouched.
// The bool is true once structural validation passes. Running it twice
// has the same effect as running it once.
func (s *Store) CheckIntegrity(ctx context.Context) (IntegrityReport, bool) {
	if raw, ok := s.primaryPayload(ctx); ok {
		if err := schema.Validate(raw); err != nil {
			s.setCorrupted(true)
			s.logInvalid(err)
			s.log.Error("stored state is corrupted", zap.String("source", s.primary.Name()))
			return IntegrityReport{Reason: err}, false
		}
	}

	d, raw, source := s.load(ctx)

	if err := schema.Validate(raw); err != nil {
		s.logInvalid(err)
		s.log.Error("stored state is corrupted", zap.String("source", source))
		return IntegrityReport{Reason: err}, false
	}

	report := Repair(d, s.log)
	report.Valid = true

	s.metrics.Repair("group_member", report.GroupMembersRemoved)
	s.metrics.Repair("attendance_entry", report.AttendanceRemoved)
	s.metrics.Repair("empty_day", report.EmptyDaysRemoved)
	if report.CounterFixed {
		s.metrics.Repair("next_student_id", 1)
	}

	if report.Repaired() {
		report.Saved = s.Save(ctx, d)
		s.log.Info("integrity repairs applied",
			zap.Int("group_members", report.GroupMembersRemoved),
			zap.Int("attendance_entries", report.AttendanceRemoved),
			zap.Int("empty_days", report.EmptyDaysRemoved),
			zap.Bool("counter_fixed", report.CounterFixed),
			zap.Bool("saved", report.Saved))
	}
	return report, true
}

// Repair removes references to unknown students from d and raises the ID
// counter past the highest known ID. It mutates d in place.
func Repair(d *model.Data, log *zap.Logger) IntegrityReport {
	if log == nil {
		log = zap.NewNop()
	}
	var report IntegrityReport

	for i := range d.Groups {
		g := &d.Groups[i]
		kept := g.Members[:0]
		for _, id := range g.Members {
			if d.HasStudent(id) {
				kept = append(kept, id)
				continue
			}
			log.Warn("removing unknown student from group",
				zap.String("group", g.Name), zap.Int("student_id", id))
			report.GroupMembersRemoved++
		}
		g.Members = kept
	}

	for _, date := range d.Attendance.Dates() {
		day := d.Attendance[date]
		for id := range day {
			if d.HasStudent(id) {
				continue
			}
			log.Warn("removing attendance for unknown student",
				zap.String("date", date), zap.Int("student_id", id))
			delete(day, id)
			report.AttendanceRemoved++
		}
		if len(day) == 0 {
			delete(d.Attendance, date)
			report.EmptyDaysRemoved++
		}
	}

	if highest := d.MaxStudentID(); d.NextStudentID <= highest {
		log.Warn("fixing next student id",
			zap.Int("stored", d.NextStudentID), zap.Int("next", highest+1))
		d.NextStudentID = highest + 1
		report.CounterFixed = true
	}
	report.NextStudentID = d.NextStudentID
	return report
}

// primaryPayload returns the primary tier's root state when it holds
// parseable JSON. Anything else is left to load.
func (s *Store) primaryPayload(ctx context.Context) ([]byte, bool) {
	raw, ok, err := s.primary.Get(ctx, DataKey)
	if err != nil {
		s.log.Error("failed to read state", zap.String("tier", s.primary.Name()), zap.Error(err))
		return nil, false
	}
	if !ok || isNull(raw) || !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}
