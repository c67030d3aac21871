package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/model"
)

// GroupView is a group with its students resolved.
type GroupView struct {
	Name     string          `json:"name"`
	Students []model.Student `json:"students"`
}

// NewGroupCommand creates the group command.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage study groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "add <name>",
		Short:         "Create an empty group",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				ok := a.roster.AddGroup(cmd.Context(), args[0])
				return a.mutation(ok, GroupView{Name: model.NormalizeName(args[0]), Students: []model.Student{}})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "remove <name>",
		Short:         "Delete a group that has no students",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				ok := a.roster.RemoveGroup(cmd.Context(), args[0])
				return a.mutation(ok, map[string]string{"removed": model.NormalizeName(args[0])})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List groups and their students",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				return runGroupList(a, cmd)
			})
		},
	})

	return cmd
}

func runGroupList(a *app, cmd *cobra.Command) error {
	ctx := cmd.Context()
	var views []GroupView
	for _, name := range a.roster.GroupNames(ctx) {
		views = append(views, GroupView{Name: name, Students: a.roster.StudentsInGroup(ctx, name)})
	}

	if a.out.Format == "json" {
		return a.out.Success(views)
	}

	if len(views) == 0 {
		fmt.Fprintln(a.out.Writer, "No groups")
		return nil
	}
	for _, g := range views {
		fmt.Fprintf(a.out.Writer, "%s (%d)\n", g.Name, len(g.Students))
		for _, st := range g.Students {
			fmt.Fprintf(a.out.Writer, "  %3d  %s\n", st.ID, st.Name)
		}
	}
	return nil
}
