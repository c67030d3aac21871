package roster

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/roach88/rollcall/internal/model"
)

// DefaultSchedule is used when the state carries no schedule at all.
var DefaultSchedule = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// Schedule returns the study days. A missing schedule means Monday to
// Friday; an empty one means no study days.
func (s *Service) Schedule(ctx context.Context) []time.Weekday {
	days := s.repo.Load(ctx).Schedule
	if days == nil {
		return slices.Clone(DefaultSchedule)
	}
	return days
}

// SaveSchedule replaces the study days. Days are stored sorted without
// duplicates.
func (s *Service) SaveSchedule(ctx context.Context, days []time.Weekday) bool {
	if len(days) == 0 {
		return s.reject("schedule must contain at least one day")
	}
	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			return s.reject("invalid weekday %d: expected 0 (Sunday) to 6 (Saturday)", int(day))
		}
	}

	d := s.repo.Load(ctx)
	d.Schedule = slices.Compact(slices.Sorted(slices.Values(days)))

	names := make([]string, len(d.Schedule))
	for i, day := range d.Schedule {
		names[i] = DayName(day)
	}
	return s.commit(ctx, d, "schedule saved: "+strings.Join(names, ", "), "save schedule")
}

// IsStudyDay reports whether date falls on a scheduled weekday.
func (s *Service) IsStudyDay(ctx context.Context, date string) bool {
	t, err := model.ParseDate(date)
	if err != nil {
		return false
	}
	return slices.Contains(s.Schedule(ctx), t.Weekday())
}

// DayName returns the English name of a weekday, or "" when out of range.
func DayName(day time.Weekday) string {
	if day < time.Sunday || day > time.Saturday {
		return ""
	}
	return day.String()
}
