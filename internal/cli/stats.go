package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/stats"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	Month  string
	Months bool
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats <id>",
		Short: "Show a student's attendance statistics",
		Long: `Show a student's attendance statistics.

Without flags, prints lifetime totals and the most recent marks.
Only marked days count; unmarked days are left out of the rate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				return runStats(a, cmd, opts, args[0])
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Month, "month", "m", "", "statistics for one month (YYYY-MM)")
	cmd.Flags().BoolVar(&opts.Months, "months", false, "list months that have records")
	cmd.MarkFlagsMutuallyExclusive("month", "months")

	return cmd
}

func runStats(a *app, cmd *cobra.Command, opts *StatsOptions, arg string) error {
	id, err := parseStudentID(arg)
	if err != nil {
		return commandError(a.out, ErrCodeArgs, err.Error(), nil)
	}

	d := a.store.Load(cmd.Context())
	st, ok := d.Students[id]
	if !ok {
		return rejected(a.out, ErrCodeRejected, fmt.Sprintf("student %d not found", id), nil)
	}
	w := a.out.Writer

	switch {
	case opts.Months:
		months := stats.AvailableMonths(d, id)
		if a.out.Format == "json" {
			return a.out.Success(months)
		}
		if len(months) == 0 {
			fmt.Fprintf(w, "No attendance recorded for %s\n", st.Name)
		}
		for _, m := range months {
			fmt.Fprintln(w, m)
		}
		return nil

	case opts.Month != "":
		year, month, err := parseMonthArg(opts.Month)
		if err != nil {
			return commandError(a.out, ErrCodeArgs, err.Error(), nil)
		}
		ms := stats.ForMonth(d, id, year, month)
		if a.out.Format == "json" {
			return a.out.Success(ms)
		}
		fmt.Fprintf(w, "%s, %s\n", st.Name, ms.Month)
		fmt.Fprintf(w, "Attendance: %d%% (%d present, %d absent, %d days)\n",
			ms.AttendanceRate, ms.PresentDays, ms.AbsentDays, ms.TotalDays)
		printRecords(w, ms.DailyRecords)
		return nil

	default:
		s := stats.Lifetime(d, id)
		if a.out.Format == "json" {
			return a.out.Success(s)
		}
		fmt.Fprintln(w, st.Name)
		fmt.Fprintf(w, "Attendance: %d%% (%d present, %d absent, %d days)\n",
			s.AttendanceRate, s.PresentDays, s.AbsentDays, s.TotalDays)
		printRecords(w, s.RecentRecords)
		return nil
	}
}

func printRecords(w io.Writer, records []stats.Record) {
	for _, r := range records {
		status := "absent"
		if r.Present {
			status = "present"
		}
		fmt.Fprintf(w, "  %s  %s\n", r.Date, status)
	}
}
