package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/config"
	"github.com/roach88/rollcall/internal/kv"
	"github.com/roach88/rollcall/internal/logging"
	"github.com/roach88/rollcall/internal/metrics"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/store"
)

// app is the wired set of components a command runs against.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	out     *OutputFormatter
	metrics *metrics.Metrics
	primary *kv.SQLite
	session kv.Tier
	store   *store.Store
	roster  *roster.Service
	notes   *notes
}

// newFormatter builds the output formatter for cmd from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openApp loads configuration and opens both storage tiers.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	out := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, commandError(out, ErrCodeConfig, "failed to load configuration", err)
	}
	if opts.DBPath != "" {
		cfg.Storage.Path = opts.DBPath
	}
	if opts.Verbose {
		cfg.Logger.Level = "debug"
	}

	log, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, commandError(out, ErrCodeConfig, "failed to create logger", err)
	}

	primary, err := kv.OpenSQLite(cfg.Storage.Path, kv.WithQuota(cfg.Storage.QuotaBytes))
	if err != nil {
		return nil, commandError(out, ErrCodeStorage, "failed to open database", err)
	}

	session, err := openSession(ctx, cfg.Session)
	if err != nil {
		primary.Close()
		return nil, commandError(out, ErrCodeStorage, "failed to open session tier", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		out:     out,
		metrics: metrics.New(),
		primary: primary,
		session: session,
		notes:   &notes{},
	}
	a.store = store.New(primary, session,
		store.WithLogger(log),
		store.WithMetrics(a.metrics),
		store.WithQuotaWarning(cfg.Storage.WarnBytes),
		store.WithImportListener(a.onImport),
	)
	a.roster = roster.New(a.store,
		roster.WithNotifier(a.notes),
		roster.WithLogger(log),
	)

	out.VerboseLog("Using database %s (session tier: %s)", cfg.Storage.Path, session.Name())
	if op, ok := a.store.CheckPendingOperations(ctx); ok {
		fmt.Fprintf(out.GetErrWriter(),
			"warning: a previous %s (%s) did not finish; run 'rollcall check' to verify the data\n", op.Kind, op.ID)
	}
	if cmd.Annotations[integrityAnnotation] != integrityManual {
		a.checkIntegrity(ctx)
	}
	return a, nil
}

// Commands annotated with integrityManual run CheckIntegrity themselves.
const (
	integrityAnnotation = "integrity"
	integrityManual     = "manual"
)

// checkIntegrity repairs dangling references before a command runs and
// warns when the stored state is corrupted.
func (a *app) checkIntegrity(ctx context.Context) {
	report, ok := a.store.CheckIntegrity(ctx)
	if !ok {
		fmt.Fprintf(a.out.GetErrWriter(),
			"warning: stored data is corrupted (%v); changes will not be saved until you import or restore a backup\n", report.Reason)
		return
	}
	if report.Repaired() {
		a.out.VerboseLog("Repaired stored data: %d group members, %d attendance entries, %d empty days removed",
			report.GroupMembersRemoved, report.AttendanceRemoved, report.EmptyDaysRemoved)
	}
}

func openSession(ctx context.Context, cfg config.SessionConfig) (kv.Tier, error) {
	if cfg.Driver == "redis" {
		r, err := kv.DialRedis(ctx, kv.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return kv.NewMemory(cfg.QuotaBytes), nil
}

func (a *app) onImport() {
	a.notes.Notify(roster.LevelSuccess, "data imported")
}

// close flushes metrics and releases both tiers.
func (a *app) close() {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.log.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
		}
	}
	if err := a.session.Close(); err != nil {
		a.log.Warn("failed to close session tier", zap.Error(err))
	}
	if err := a.primary.Close(); err != nil {
		a.log.Warn("failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// withApp opens the app for the duration of fn.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// commandError reports a setup or argument failure (exit code 2).
func commandError(out *OutputFormatter, code, message string, err error) error {
	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	_ = out.Error(code, detail, nil)
	return WrapExitError(ExitCommandError, message, err)
}

// rejected reports a refused operation (exit code 1).
func rejected(out *OutputFormatter, code, message string, details interface{}) error {
	_ = out.Error(code, message, details)
	return NewExitError(ExitFailure, message)
}

// mutation reports the outcome of a roster mutation. On success the
// notification messages are printed (text) or data is emitted (json).
func (a *app) mutation(ok bool, data interface{}) error {
	if !ok {
		return rejected(a.out, ErrCodeRejected, a.notes.lastError(), nil)
	}
	if a.out.Format == "json" {
		return a.out.Success(data)
	}
	a.notes.print(a.out.Writer)
	return nil
}
