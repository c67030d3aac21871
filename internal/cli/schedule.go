package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/roster"
)

// ScheduleView lists the study days.
type ScheduleView struct {
	Days  []time.Weekday `json:"days"`
	Names []string       `json:"names"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show or set the weekly study days",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show the study days",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				view := newScheduleView(a.roster.Schedule(cmd.Context()))
				if a.out.Format == "json" {
					return a.out.Success(view)
				}
				if len(view.Names) == 0 {
					fmt.Fprintln(a.out.Writer, "No study days")
					return nil
				}
				fmt.Fprintln(a.out.Writer, strings.Join(view.Names, ", "))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <day...>",
		Short: "Replace the study days",
		Long: `Replace the study days.

Days are numbers 0 (Sunday) to 6 (Saturday) or English names such as
"monday" or "mon".`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				days := make([]time.Weekday, 0, len(args))
				for _, arg := range args {
					d, err := parseWeekday(arg)
					if err != nil {
						return commandError(a.out, ErrCodeArgs, err.Error(), nil)
					}
					days = append(days, d)
				}
				ok := a.roster.SaveSchedule(cmd.Context(), days)
				return a.mutation(ok, newScheduleView(a.roster.Schedule(cmd.Context())))
			})
		},
	})

	return cmd
}

func newScheduleView(days []time.Weekday) ScheduleView {
	view := ScheduleView{Days: days, Names: make([]string, len(days))}
	for i, d := range days {
		view.Names[i] = roster.DayName(d)
	}
	return view
}
