package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/model"
	"github.com/roach88/rollcall/internal/watch"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate stored data and repair dangling references",
		Long: `Validate the stored data and repair what can be repaired.

Structurally invalid data is reported and left untouched (exit 1).
Otherwise group members and attendance entries that point at unknown
students are removed and the student ID counter is corrected.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{integrityAnnotation: integrityManual},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				report, ok := a.store.CheckIntegrity(cmd.Context())
				if !ok {
					return rejected(a.out, ErrCodeCorrupted, "stored data is corrupted", report.Reason.Error())
				}
				if a.out.Format == "json" {
					return a.out.Success(report)
				}
				w := a.out.Writer
				if !report.Repaired() {
					fmt.Fprintln(w, "✓ Data is consistent")
					return nil
				}
				fmt.Fprintln(w, "Repaired:")
				fmt.Fprintf(w, "  group members removed:      %d\n", report.GroupMembersRemoved)
				fmt.Fprintf(w, "  attendance entries removed: %d\n", report.AttendanceRemoved)
				fmt.Fprintf(w, "  empty days removed:         %d\n", report.EmptyDaysRemoved)
				if report.CounterFixed {
					fmt.Fprintf(w, "  next student id set to:     %d\n", report.NextStudentID)
				}
				if !report.Saved {
					return rejected(a.out, ErrCodeStorage, "repairs could not be saved", nil)
				}
				return nil
			})
		},
	}
}

// NewQuotaCommand creates the quota command.
func NewQuotaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "quota",
		Short:         "Report the size of the stored data",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				status := a.store.CheckQuota(cmd.Context())
				if a.out.Format == "json" {
					return a.out.Success(status)
				}
				fmt.Fprintf(a.out.Writer, "%d of %d bytes\n", status.Bytes, status.WarnBytes)
				if !status.OK {
					fmt.Fprintln(a.out.Writer, "warning: storage is nearly full; export and run 'rollcall cleanup'")
				}
				return nil
			})
		},
	}
}

// CleanupOptions holds flags for the cleanup command.
type CleanupOptions struct {
	Retention time.Duration
}

// NewCleanupCommand creates the cleanup command.
func NewCleanupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanupOptions{}

	cmd := &cobra.Command{
		Use:           "cleanup",
		Short:         "Delete attendance older than the retention period",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				retention := a.cfg.Retention.Period
				if opts.Retention > 0 {
					retention = opts.Retention
				}
				now := time.Now()
				removed := a.store.CleanupOldData(cmd.Context(), now, retention)
				cutoff := model.FormatDate(now.Add(-retention))

				if a.out.Format == "json" {
					return a.out.Success(map[string]interface{}{"removed": removed, "cutoff": cutoff})
				}
				fmt.Fprintf(a.out.Writer, "Removed %d date(s) before %s\n", removed, cutoff)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&opts.Retention, "retention", 0, "keep records newer than this (default retention.period)")

	return cmd
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report changes made by other sessions",
		Long: `Watch the database for changes made by other processes.

Prints a line whenever another session saves data. When backup.interval
is set, a backup is also taken on that interval. Stops on Ctrl-C.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return runWatch(ctx, a)
			})
		},
	}
}

func runWatch(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := watch.New(a.cfg.Storage.Path, a.store, func() {
		fmt.Fprintf(a.out.Writer, "%s data updated in another session\n", time.Now().Format(time.TimeOnly))
	}, watch.WithLogger(a.log))

	backups := make(chan error, 1)
	go func() { backups <- a.store.RunBackupSchedule(ctx, a.cfg.Backup.Interval) }()

	a.out.VerboseLog("Watching %s", a.cfg.Storage.Path)
	err := w.Run(ctx)

	// the backup schedule only ends on cancellation
	cancel()
	<-backups

	if err != nil {
		return commandError(a.out, ErrCodeStorage, "watch failed", err)
	}
	return nil
}
