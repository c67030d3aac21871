package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/model"
)

func fixture() *model.Data {
	d := model.Seed()
	d.Attendance.Set("2024-01-05", 1, model.Present)
	d.Attendance.Set("2024-01-12", 1, model.Absent)
	d.Attendance.Set("2024-01-12", 2, model.Present)
	d.Attendance.Set("2023-12-20", 1, model.Present)
	d.Attendance.Set("2024-02-02", 2, model.Absent)
	return d
}

func TestForMonth(t *testing.T) {
	ms := ForMonth(fixture(), 1, 2024, time.January)

	assert.Equal(t, MonthStats{
		Month:          "2024-01",
		PresentDays:    1,
		AbsentDays:     1,
		TotalDays:      2,
		AttendanceRate: 50,
		DailyRecords: []Record{
			{Date: "2024-01-12", Present: false},
			{Date: "2024-01-05", Present: true},
		},
	}, ms)
}

func TestForMonth_NoRecords(t *testing.T) {
	ms := ForMonth(fixture(), 1, 2024, time.March)

	assert.Equal(t, "2024-03", ms.Month)
	assert.Zero(t, ms.TotalDays)
	assert.Zero(t, ms.AttendanceRate)
	assert.Empty(t, ms.DailyRecords)
}

func TestAvailableMonths(t *testing.T) {
	d := fixture()

	assert.Equal(t, []string{"2024-01", "2023-12"}, AvailableMonths(d, 1))
	assert.Equal(t, []string{"2024-02", "2024-01"}, AvailableMonths(d, 2))
	assert.Empty(t, AvailableMonths(d, 6))
}

func TestLifetime(t *testing.T) {
	s := Lifetime(fixture(), 1)

	assert.Equal(t, 3, s.TotalDays)
	assert.Equal(t, 2, s.PresentDays)
	assert.Equal(t, 1, s.AbsentDays)
	assert.Equal(t, 67, s.AttendanceRate)
	assert.Equal(t, []Record{
		{Date: "2024-01-12", Present: false},
		{Date: "2024-01-05", Present: true},
		{Date: "2023-12-20", Present: true},
	}, s.RecentRecords)
}

func TestLifetime_CapsRecentRecords(t *testing.T) {
	d := model.Seed()
	for day := 1; day <= 15; day++ {
		d.Attendance.Set(fmt.Sprintf("2024-03-%02d", day), 4, model.Present)
	}

	s := Lifetime(d, 4)
	assert.Equal(t, 15, s.TotalDays)
	assert.Equal(t, 100, s.AttendanceRate)
	require.Len(t, s.RecentRecords, RecentLimit)
	assert.Equal(t, "2024-03-15", s.RecentRecords[0].Date)
	assert.Equal(t, "2024-03-06", s.RecentRecords[RecentLimit-1].Date)
}

func TestRate(t *testing.T) {
	tests := []struct {
		present, total, want int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{3, 3, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.present, tt.total), "%d/%d", tt.present, tt.total)
	}
}
