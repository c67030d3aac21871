package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

// DateLayout is the layout of attendance date keys.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD attendance key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders t as an attendance key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey returns the YYYY-MM prefix of a date key.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// DayRecord maps student ID to a definite mark for one date.
type DayRecord map[int]Presence

// Attendance maps YYYY-MM-DD to the marks recorded on that date.
type Attendance map[string]DayRecord

// Get returns the mark for id on date, Unmarked when there is no record.
func (a Attendance) Get(date string, id int) Presence {
	day, ok := a[date]
	if !ok {
		return Unmarked
	}
	return day[id]
}

// Set records p for id on date. Unmarked deletes the entry, and a day left
// without entries is removed.
func (a Attendance) Set(date string, id int, p Presence) {
	if !p.IsMarked() {
		day, ok := a[date]
		if !ok {
			return
		}
		delete(day, id)
		if len(day) == 0 {
			delete(a, date)
		}
		return
	}

	day, ok := a[date]
	if !ok {
		day = DayRecord{}
		a[date] = day
	}
	day[id] = p
}

// RemoveStudent deletes every entry for id and prunes emptied days.
// Returns the number of entries removed.
func (a Attendance) RemoveStudent(id int) int {
	removed := 0
	for date, day := range a {
		if _, ok := day[id]; ok {
			delete(day, id)
			removed++
		}
		if len(day) == 0 {
			delete(a, date)
		}
	}
	return removed
}

// HasRecordInMonth reports whether id has any record in the YYYY-MM month.
func (a Attendance) HasRecordInMonth(id int, month string) bool {
	for date, day := range a {
		if MonthKey(date) != month {
			continue
		}
		if _, ok := day[id]; ok {
			return true
		}
	}
	return false
}

// Dates returns the recorded dates in ascending order.
func (a Attendance) Dates() []string {
	return slices.Sorted(maps.Keys(a))
}

// Clone returns a deep copy.
func (a Attendance) Clone() Attendance {
	out := make(Attendance, len(a))
	for date, day := range a {
		out[date] = maps.Clone(day)
	}
	return out
}

// UnmarshalJSON decodes the persisted attendance map. Null entries mean
// "no record" and are dropped, as are days left empty.
func (a *Attendance) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var raw map[string]map[string]*bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("attendance: %w", err)
	}

	out := make(Attendance, len(raw))
	for date, entries := range raw {
		day := DayRecord{}
		for key, val := range entries {
			id, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("attendance %s: invalid student id %q", date, key)
			}
			if val == nil {
				continue
			}
			if *val {
				day[id] = Present
			} else {
				day[id] = Absent
			}
		}
		if len(day) > 0 {
			out[date] = day
		}
	}
	*a = out
	return nil
}
