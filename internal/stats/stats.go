// Package stats aggregates a student's attendance per month and over all
// time. Only days with a definite mark count; unmarked days are excluded
// from both the totals and the attendance rate.
package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/roach88/rollcall/internal/model"
)

// RecentLimit caps Summary.RecentRecords.
const RecentLimit = 10

// Record is one marked day.
type Record struct {
	Date    string `json:"date"`
	Present bool   `json:"present"`
}

// MonthStats is a student's attendance within one calendar month.
type MonthStats struct {
	Month          string   `json:"month"`
	PresentDays    int      `json:"presentDays"`
	AbsentDays     int      `json:"absentDays"`
	TotalDays      int      `json:"totalDays"`
	AttendanceRate int      `json:"attendanceRate"`
	DailyRecords   []Record `json:"dailyRecords"`
}

// Summary is a student's attendance over all recorded dates.
type Summary struct {
	PresentDays    int      `json:"presentDays"`
	AbsentDays     int      `json:"absentDays"`
	TotalDays      int      `json:"totalDays"`
	AttendanceRate int      `json:"attendanceRate"`
	RecentRecords  []Record `json:"recentRecords"`
}

// Rate returns present/total as a whole percentage, 0 when total is 0.
func Rate(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// MonthKey formats year and month as YYYY-MM.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ForMonth returns id's marks in the given month, most recent first.
func ForMonth(d *model.Data, id int, year int, month time.Month) MonthStats {
	key := MonthKey(year, month)
	records := collect(d, id, func(date string) bool { return model.MonthKey(date) == key })

	ms := MonthStats{Month: key, DailyRecords: records}
	ms.PresentDays, ms.AbsentDays = count(records)
	ms.TotalDays = len(records)
	ms.AttendanceRate = Rate(ms.PresentDays, ms.TotalDays)
	return ms
}

// AvailableMonths lists the YYYY-MM months in which id has any mark,
// most recent first.
func AvailableMonths(d *model.Data, id int) []string {
	var months []string
	for date, day := range d.Attendance {
		if _, ok := day[id]; ok {
			months = append(months, model.MonthKey(date))
		}
	}
	slices.SortFunc(months, func(a, b string) int { return cmp.Compare(b, a) })
	return slices.Compact(months)
}

// Lifetime returns id's totals over every recorded date together with the
// RecentLimit most recent marks.
func Lifetime(d *model.Data, id int) Summary {
	records := collect(d, id, func(string) bool { return true })

	var s Summary
	s.PresentDays, s.AbsentDays = count(records)
	s.TotalDays = len(records)
	s.AttendanceRate = Rate(s.PresentDays, s.TotalDays)
	s.RecentRecords = records[:min(len(records), RecentLimit)]
	return s
}

// collect returns id's marks on the dates accepted by keep, newest first.
func collect(d *model.Data, id int, keep func(date string) bool) []Record {
	records := []Record{}
	for date, day := range d.Attendance {
		if !keep(date) {
			continue
		}
		p, ok := day[id]
		if !ok || !p.IsMarked() {
			continue
		}
		records = append(records, Record{Date: date, Present: p == model.Present})
	}
	slices.SortFunc(records, func(a, b Record) int { return cmp.Compare(b.Date, a.Date) })
	return records
}

func count(records []Record) (present, absent int) {
	for _, r := range records {
		if r.Present {
			present++
		} else {
			absent++
		}
	}
	return present, absent
}
