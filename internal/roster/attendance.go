package roster

import (
	"context"
	"fmt"
	"maps"

	"github.com/roach88/rollcall/internal/model"
)

// AttendanceForDate returns the marks recorded on date. The result is a
// copy and is empty when nothing is recorded.
func (s *Service) AttendanceForDate(ctx context.Context, date string) model.DayRecord {
	day := s.repo.Load(ctx).Attendance[date]
	if day == nil {
		return model.DayRecord{}
	}
	return maps.Clone(day)
}

// SaveAttendance records p for a student on date. Unmarked removes the
// record, and the date itself once nobody is marked on it.
func (s *Service) SaveAttendance(ctx context.Context, date string, id int, p model.Presence) bool {
	if _, err := model.ParseDate(date); err != nil {
		return s.reject("%v", err)
	}

	d := s.repo.Load(ctx)
	st, ok := d.Students[id]
	if !ok {
		return s.reject("student %d not found", id)
	}

	d.Attendance.Set(date, id, p)

	msg := fmt.Sprintf("%s: %s marked %s", date, st.Name, p)
	if !p.IsMarked() {
		msg = fmt.Sprintf("%s: mark for %s cleared", date, st.Name)
	}
	return s.commit(ctx, d, msg, "save attendance")
}

// NextStatus returns the mark that follows the current one for id on date:
// unmarked, present, absent, then unmarked again.
func (s *Service) NextStatus(ctx context.Context, id int, date string) model.Presence {
	return s.repo.Load(ctx).Attendance.Get(date, id).Next()
}

// Toggle advances the mark for id on date and saves it.
func (s *Service) Toggle(ctx context.Context, id int, date string) (model.Presence, bool) {
	next := s.NextStatus(ctx, id, date)
	if !s.SaveAttendance(ctx, date, id, next) {
		return model.Unmarked, false
	}
	return next, true
}
