package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/rollcall/internal/model"
)

func parseStudentID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid student id %q: expected a positive integer", arg)
	}
	return id, nil
}

// parseDateArg accepts YYYY-MM-DD, "today" or "yesterday".
func parseDateArg(arg string, now time.Time) (string, error) {
	switch strings.ToLower(arg) {
	case "today":
		return model.FormatDate(now), nil
	case "yesterday":
		return model.FormatDate(now.AddDate(0, 0, -1)), nil
	}
	if _, err := model.ParseDate(arg); err != nil {
		return "", err
	}
	return arg, nil
}

// parseMonthArg accepts YYYY-MM.
func parseMonthArg(arg string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", arg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: expected YYYY-MM", arg)
	}
	return t.Year(), t.Month(), nil
}

// parseWeekday accepts 0-6 (Sunday first) or an English day name or
// three-letter abbreviation.
func parseWeekday(arg string) (time.Weekday, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("invalid weekday %d: expected 0 (Sunday) to 6 (Saturday)", n)
		}
		return time.Weekday(n), nil
	}

	lower := strings.ToLower(arg)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if lower == name || lower == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", arg)
}
