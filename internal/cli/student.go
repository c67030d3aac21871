package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/model"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/stats"
)

// StudentView is a student with its group and lifetime attendance.
type StudentView struct {
	roster.StudentInfo
	Stats stats.Summary `json:"stats"`
}

// NewStudentCommand creates the student command.
func NewStudentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage students",
	}

	cmd.AddCommand(newStudentSubcommand(rootOpts, "add <group> <name...>", "Add a student to a group", cobra.MinimumNArgs(2),
		func(a *app, cmd *cobra.Command, args []string) error {
			st, ok := a.roster.AddStudent(cmd.Context(), args[0], strings.Join(args[1:], " "))
			return a.mutation(ok, st)
		}))

	cmd.AddCommand(newStudentSubcommand(rootOpts, "remove <id>", "Remove a student and all of its attendance", cobra.ExactArgs(1),
		func(a *app, cmd *cobra.Command, args []string) error {
			id, err := parseStudentID(args[0])
			if err != nil {
				return commandError(a.out, ErrCodeArgs, err.Error(), nil)
			}
			return a.mutation(a.roster.RemoveStudent(cmd.Context(), id), map[string]int{"removed": id})
		}))

	cmd.AddCommand(newStudentSubcommand(rootOpts, "move <id> <group>", "Move a student to another group", cobra.ExactArgs(2),
		func(a *app, cmd *cobra.Command, args []string) error {
			id, err := parseStudentID(args[0])
			if err != nil {
				return commandError(a.out, ErrCodeArgs, err.Error(), nil)
			}
			ok := a.roster.MoveStudent(cmd.Context(), id, args[1])
			info, _ := a.roster.StudentByID(cmd.Context(), id)
			return a.mutation(ok, info)
		}))

	cmd.AddCommand(newStudentSubcommand(rootOpts, "rename <id> <name...>", "Rename a student", cobra.MinimumNArgs(2),
		func(a *app, cmd *cobra.Command, args []string) error {
			id, err := parseStudentID(args[0])
			if err != nil {
				return commandError(a.out, ErrCodeArgs, err.Error(), nil)
			}
			ok := a.roster.UpdateStudent(cmd.Context(), id, strings.Join(args[1:], " "))
			info, _ := a.roster.StudentByID(cmd.Context(), id)
			return a.mutation(ok, info)
		}))

	cmd.AddCommand(newStudentSubcommand(rootOpts, "show <id>", "Show a student with lifetime attendance", cobra.ExactArgs(1),
		runStudentShow))

	list := newStudentSubcommand(rootOpts, "list", "List students", cobra.NoArgs,
		func(a *app, cmd *cobra.Command, args []string) error {
			group, _ := cmd.Flags().GetString("group")
			return runStudentList(a, cmd, group)
		})
	list.Flags().StringP("group", "g", "", "only students of this group")
	cmd.AddCommand(list)

	return cmd
}

func newStudentSubcommand(rootOpts *RootOptions, use, short string, args cobra.PositionalArgs,
	run func(a *app, cmd *cobra.Command, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				return run(a, cmd, args)
			})
		},
	}
}

func runStudentShow(a *app, cmd *cobra.Command, args []string) error {
	id, err := parseStudentID(args[0])
	if err != nil {
		return commandError(a.out, ErrCodeArgs, err.Error(), nil)
	}

	info, ok := a.roster.StudentByID(cmd.Context(), id)
	if !ok {
		return rejected(a.out, ErrCodeRejected, fmt.Sprintf("student %d not found", id), nil)
	}
	view := StudentView{StudentInfo: info, Stats: stats.Lifetime(a.store.Load(cmd.Context()), id)}

	if a.out.Format == "json" {
		return a.out.Success(view)
	}

	w := a.out.Writer
	group := view.Group
	if group == "" {
		group = "-"
	}
	fmt.Fprintf(w, "%d  %s\n", view.ID, view.Name)
	fmt.Fprintf(w, "Group:      %s\n", group)
	fmt.Fprintf(w, "Attendance: %d%% (%d present, %d absent, %d days)\n",
		view.Stats.AttendanceRate, view.Stats.PresentDays, view.Stats.AbsentDays, view.Stats.TotalDays)
	if len(view.Stats.RecentRecords) > 0 {
		fmt.Fprintln(w, "Recent:")
		printRecords(w, view.Stats.RecentRecords)
	}
	return nil
}

func runStudentList(a *app, cmd *cobra.Command, group string) error {
	var students []model.Student
	if group != "" {
		students = a.roster.StudentsInGroup(cmd.Context(), group)
		if students == nil {
			return rejected(a.out, ErrCodeRejected, fmt.Sprintf("group %q not found", model.NormalizeName(group)), nil)
		}
	} else {
		students = a.roster.Students(cmd.Context())
	}

	if a.out.Format == "json" {
		return a.out.Success(students)
	}
	for _, st := range students {
		fmt.Fprintf(a.out.Writer, "%3d  %s\n", st.ID, st.Name)
	}
	return nil
}
