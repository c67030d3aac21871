package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage the backup slot",
		Long: `Manage the single backup slot.

The slot holds one copy of the data. create overwrites it, restore
replaces the live data with it, remove clears it.`,
	}

	cmd.AddCommand(newBackupSubcommand(rootOpts, "create", "Copy the current data into the backup slot", func(a *app, cmd *cobra.Command) error {
		if !a.store.CreateBackup(cmd.Context()) {
			return rejected(a.out, ErrCodeStorage, "failed to create backup", nil)
		}
		info, _ := a.store.BackupInfo(cmd.Context())
		if a.out.Format == "json" {
			return a.out.Success(info)
		}
		fmt.Fprintf(a.out.Writer, "Backup created at %s\n", info.Timestamp.Format(time.RFC3339))
		return nil
	}))

	cmd.AddCommand(newBackupSubcommand(rootOpts, "restore", "Replace the current data with the backup", func(a *app, cmd *cobra.Command) error {
		if !a.store.RestoreFromBackup(cmd.Context()) {
			return rejected(a.out, ErrCodeNoBackup, "no usable backup to restore", nil)
		}
		if a.out.Format == "json" {
			return a.out.Success(map[string]bool{"restored": true})
		}
		fmt.Fprintln(a.out.Writer, "Data restored from backup")
		return nil
	}))

	cmd.AddCommand(newBackupSubcommand(rootOpts, "remove", "Clear the backup slot", func(a *app, cmd *cobra.Command) error {
		a.store.RemoveBackup(cmd.Context())
		if a.out.Format == "json" {
			return a.out.Success(map[string]bool{"removed": true})
		}
		fmt.Fprintln(a.out.Writer, "Backup removed")
		return nil
	}))

	cmd.AddCommand(newBackupSubcommand(rootOpts, "info", "Describe the backup slot", func(a *app, cmd *cobra.Command) error {
		info, ok := a.store.BackupInfo(cmd.Context())
		if !ok {
			return rejected(a.out, ErrCodeNoBackup, "no backup", nil)
		}
		if a.out.Format == "json" {
			return a.out.Success(info)
		}
		if info.Legacy {
			fmt.Fprintf(a.out.Writer, "Legacy backup (%d bytes, no timestamp)\n", info.Bytes)
			return nil
		}
		fmt.Fprintf(a.out.Writer, "Backup from %s, version %s (%d bytes)\n",
			info.Timestamp.Format(time.RFC3339), info.Version, info.Bytes)
		return nil
	}))

	return cmd
}

func newBackupSubcommand(rootOpts *RootOptions, use, short string, run func(a *app, cmd *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				return run(a, cmd)
			})
		},
	}
}
