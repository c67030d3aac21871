package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStudentID(t *testing.T) {
	id, err := parseStudentID("12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, bad := range []string{"0", "-3", "x", ""} {
		_, err := parseStudentID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDateArg(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		arg  string
		want string
	}{
		{"2024-01-10", "2024-01-10"},
		{"today", "2024-03-01"},
		{"Yesterday", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseDateArg(tt.arg, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseDateArg("10/01/2024", now)
	assert.Error(t, err)
}

func TestParseMonthArg(t *testing.T) {
	year, month, err := parseMonthArg("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.February, month)

	_, _, err = parseMonthArg("2024-13")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		arg  string
		want time.Weekday
	}{
		{"0", time.Sunday},
		{"6", time.Saturday},
		{"wed", time.Wednesday},
		{"Friday", time.Friday},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseWeekday(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"7", "-1", "someday"} {
		_, err := parseWeekday(bad)
		assert.Error(t, err, bad)
	}
}
