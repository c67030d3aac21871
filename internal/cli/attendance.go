package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/model"
)

// MarkResult is the outcome of mark and attendance set.
type MarkResult struct {
	Date      string         `json:"date"`
	StudentID int            `json:"studentId"`
	Status    model.Presence `json:"status"`
}

// DayView is the attendance of every group on one date.
type DayView struct {
	Date     string       `json:"date"`
	StudyDay bool         `json:"studyDay"`
	Groups   []GroupMarks `json:"groups"`
}

// GroupMarks lists one group's students with their marks.
type GroupMarks struct {
	Name  string        `json:"name"`
	Marks []StudentMark `json:"marks"`
}

// StudentMark is one student's mark on a date.
type StudentMark struct {
	model.Student
	Status model.Presence `json:"status"`
}

// NewMarkCommand creates the mark command.
func NewMarkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <date> <id>",
		Short: "Cycle a student's mark: unmarked, present, absent",
		Long: `Advance a student's attendance mark for a date.

Each call moves the mark one step: unmarked → present → absent → unmarked.
The date is YYYY-MM-DD, "today" or "yesterday".`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				date, id, err := parseMarkArgs(args, time.Now())
				if err != nil {
					return commandError(a.out, ErrCodeArgs, err.Error(), nil)
				}
				status, ok := a.roster.Toggle(cmd.Context(), id, date)
				return a.mutation(ok, MarkResult{Date: date, StudentID: id, Status: status})
			})
		},
	}
}

// NewAttendanceCommand creates the attendance command.
func NewAttendanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record and show attendance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "set <date> <id> present|absent|unmarked",
		Short:         "Set a student's mark for a date",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				date, id, err := parseMarkArgs(args[:2], time.Now())
				if err != nil {
					return commandError(a.out, ErrCodeArgs, err.Error(), nil)
				}
				status, err := model.ParsePresence(args[2])
				if err != nil {
					return commandError(a.out, ErrCodeArgs, err.Error(), nil)
				}
				ok := a.roster.SaveAttendance(cmd.Context(), date, id, status)
				return a.mutation(ok, MarkResult{Date: date, StudentID: id, Status: status})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "show <date>",
		Short:         "Show every group's marks for a date",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				date, err := parseDateArg(args[0], time.Now())
				if err != nil {
					return commandError(a.out, ErrCodeArgs, err.Error(), nil)
				}
				return runAttendanceShow(a, cmd, date)
			})
		},
	})

	return cmd
}

func parseMarkArgs(args []string, now time.Time) (string, int, error) {
	date, err := parseDateArg(args[0], now)
	if err != nil {
		return "", 0, err
	}
	id, err := parseStudentID(args[1])
	if err != nil {
		return "", 0, err
	}
	return date, id, nil
}

func runAttendanceShow(a *app, cmd *cobra.Command, date string) error {
	ctx := cmd.Context()
	day := a.roster.AttendanceForDate(ctx, date)

	view := DayView{Date: date, StudyDay: a.roster.IsStudyDay(ctx, date), Groups: []GroupMarks{}}
	for _, name := range a.roster.GroupNames(ctx) {
		g := GroupMarks{Name: name, Marks: []StudentMark{}}
		for _, st := range a.roster.StudentsInGroup(ctx, name) {
			g.Marks = append(g.Marks, StudentMark{Student: st, Status: day[st.ID]})
		}
		view.Groups = append(view.Groups, g)
	}

	if a.out.Format == "json" {
		return a.out.Success(view)
	}

	w := a.out.Writer
	t, _ := model.ParseDate(date)
	fmt.Fprintf(w, "%s (%s)", date, t.Weekday())
	if !view.StudyDay {
		fmt.Fprint(w, ", not a study day")
	}
	fmt.Fprintln(w)
	for _, g := range view.Groups {
		fmt.Fprintf(w, "%s\n", g.Name)
		for _, m := range g.Marks {
			fmt.Fprintf(w, "  %s %3d  %s\n", markSymbol(m.Status), m.ID, m.Name)
		}
	}
	return nil
}

func markSymbol(p model.Presence) string {
	switch p {
	case model.Present:
		return "[+]"
	case model.Absent:
		return "[-]"
	default:
		return "[ ]"
	}
}
