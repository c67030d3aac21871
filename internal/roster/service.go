package roster

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
)

// Repository loads and saves the whole attendance state.
type Repository interface {
	Load(ctx context.Context) *model.Data
	Save(ctx context.Context, d *model.Data) bool
}

// Level classifies a notification.
type Level int8

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, msg string)

func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// Clock supplies the current time for month-scoped checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service implements the roster operations.
type Service struct {
	repo   Repository
	notify Notifier
	clock  Clock
	log    *zap.Logger
}

// Option configures New.
type Option func(*Service)

// WithNotifier sets where outcome messages go. Defaults to discarding them.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// WithClock sets the clock used by RemoveStudent's current-month check.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a service over repo.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		notify: NotifierFunc(func(Level, string) {}),
		clock:  systemClock{},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("roster")
	return s
}

func (s *Service) reject(format string, args ...any) bool {
	msg := fmt.Sprintf(format, args...)
	s.log.Info("operation rejected", zap.String("reason", msg))
	s.notify.Notify(LevelError, msg)
	return false
}

// commit saves d and notifies success or failure. failure names the
// operation for the error message.
func (s *Service) commit(ctx context.Context, d *model.Data, success, failure string) bool {
	if !s.repo.Save(ctx, d) {
		s.log.Error("save failed", zap.String("operation", failure))
		s.notify.Notify(LevelError, "failed to save: "+failure)
		return false
	}
	if success != "" {
		s.notify.Notify(LevelSuccess, success)
	}
	return true
}
