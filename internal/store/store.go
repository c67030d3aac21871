package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/kv"
	"github.com/roach88/rollcall/internal/metrics"
	"github.com/roach88/rollcall/internal/model"
	"github.com/roach88/rollcall/internal/schema"
)

// Storage keys. State and backup never share a key, so writing a backup
// cannot clobber live state.
const (
	DataKey      = "attendance_db"
	BackupKey    = "attendance_backup"
	OperationKey = "operation_in_progress"
)

// Load sources reported in logs and metrics when no tier had usable state.
const sourceSeed = "seed"

// Clock supplies wall time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real-time clock.
var SystemClock Clock = systemClock{}

// Store is the attendance data store.
type Store struct {
	primary kv.Tier
	session kv.Tier

	log      *zap.Logger
	metrics  *metrics.Metrics
	clock    Clock
	newToken func() string
	seed     func() *model.Data
	onImport func()

	warnBytes int64

	mu        sync.Mutex
	lastWrite [sha256.Size]byte
	wrote     bool
	corrupt   bool
}

// Option configures New.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMetrics sets the metrics sink. Nil records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock sets the clock used for backup timestamps, markers and cleanup.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithTokenGenerator sets how operation marker IDs are generated.
// Defaults to UUIDv7.
func WithTokenGenerator(gen func() string) Option {
	return func(s *Store) { s.newToken = gen }
}

// WithSeed replaces the default state created on first load.
func WithSeed(seed func() *model.Data) Option {
	return func(s *Store) { s.seed = seed }
}

// WithImportListener registers a callback run after a successful import.
func WithImportListener(fn func()) Option {
	return func(s *Store) { s.onImport = fn }
}

// WithQuotaWarning sets the serialized size above which CheckQuota warns.
func WithQuotaWarning(bytes int64) Option {
	return func(s *Store) { s.warnBytes = bytes }
}

// DefaultWarnBytes is the CheckQuota threshold when none is configured.
const DefaultWarnBytes = 4.5 * 1024 * 1024

// New creates a store over a durable primary tier and an optional session
// tier used as fallback. session may be nil.
func New(primary, session kv.Tier, opts ...Option) *Store {
	s := &Store{
		primary:   primary,
		session:   session,
		log:       zap.NewNop(),
		clock:     SystemClock,
		newToken:  func() string { return uuid.Must(uuid.NewV7()).String() },
		seed:      model.Seed,
		warnBytes: DefaultWarnBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("store")
	return s
}

// ErrCorrupted is logged when a save is refused because the primary tier
// holds state that parses as JSON but is not a valid root state.
var ErrCorrupted = errors.New("stored state is corrupted")

// Save writes the state to the primary tier, falling back to the session
// tier when the primary write fails. Returns false only if no tier accepted
// it, or when the primary tier holds corrupted state: that state is only
// replaced by Import or RestoreFromBackup.
func (s *Store) Save(ctx context.Context, d *model.Data) bool {
	if s.Corrupted() {
		s.log.Error("refusing to overwrite stored state", zap.Error(ErrCorrupted))
		s.metrics.SaveFailed()
		return false
	}
	return s.save(ctx, d)
}

// replace saves d even over corrupted state.
func (s *Store) replace(ctx context.Context, d *model.Data) bool {
	if !s.save(ctx, d) {
		return false
	}
	s.setCorrupted(false)
	return true
}

func (s *Store) save(ctx context.Context, d *model.Data) bool {
	payload, err := json.Marshal(d)
	if err != nil {
		s.log.Error("failed to serialize state", zap.Error(err))
		s.metrics.SaveFailed()
		return false
	}
	return s.write(ctx, payload)
}

func (s *Store) write(ctx context.Context, payload []byte) bool {
	err := s.primary.Set(ctx, DataKey, payload)
	if err == nil {
		s.remember(payload)
		s.metrics.Save(s.primary.Name())
		s.log.Debug("state saved", zap.String("tier", s.primary.Name()), zap.Int("bytes", len(payload)))
		return true
	}
	s.log.Error("failed to save state", zap.String("tier", s.primary.Name()), zap.Error(err))

	if s.session == nil {
		s.metrics.SaveFailed()
		return false
	}

	if err := s.session.Set(ctx, DataKey, payload); err != nil {
		s.log.Error("failed to save state to fallback tier",
			zap.String("tier", s.session.Name()), zap.Error(err))
		s.metrics.SaveFailed()
		return false
	}
	s.metrics.Save(s.session.Name())
	s.log.Warn("state saved to fallback tier", zap.String("tier", s.session.Name()))
	return true
}

// Corrupted reports whether the last read of the primary tier found state
// that parses as JSON but is not a valid root state.
func (s *Store) Corrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.corrupt
}

func (s *Store) setCorrupted(v bool) {
	s.mu.Lock()
	s.corrupt = v
	s.mu.Unlock()
}

// Load returns the current state. It reads the primary tier, then the
// session tier, and otherwise creates and persists the default seed.
// It never fails. A missing or unparseable payload counts as absent. A
// primary payload that parses but is not a valid root state is left in
// place: Load returns the seed without saving it and Corrupted reports true.
func (s *Store) Load(ctx context.Context) *model.Data {
	d, _, _ := s.load(ctx)
	return d
}

// load also returns the raw payload the state was decoded from and its
// source. For corrupted primary state raw is the corrupted payload.
func (s *Store) load(ctx context.Context) (*model.Data, []byte, string) {
	d, raw, status := s.loadFrom(ctx, s.primary)
	s.setCorrupted(status == payloadCorrupt)
	switch status {
	case payloadOK:
		s.metrics.Load(s.primary.Name())
		return d, raw, s.primary.Name()
	case payloadCorrupt:
		s.metrics.Load(sourceSeed)
		return s.seed(), raw, s.primary.Name()
	}

	if s.session != nil {
		if d, raw, status := s.loadFrom(ctx, s.session); status == payloadOK {
			s.metrics.Load(s.session.Name())
			s.log.Info("state loaded from fallback tier", zap.String("tier", s.session.Name()))
			return d, raw, s.session.Name()
		}
	}

	d = s.seed()
	s.log.Info("no stored state, creating default data")
	s.Save(ctx, d)
	s.metrics.Load(sourceSeed)

	raw, err := json.Marshal(d)
	if err != nil {
		s.log.Error("failed to serialize default state", zap.Error(err))
	}
	return d, raw, sourceSeed
}

type payloadStatus int

const (
	payloadAbsent payloadStatus = iota
	payloadOK
	payloadCorrupt
)

// loadFrom reads the root state from tier. Read errors, missing keys, null
// and unparseable JSON are all absent; JSON that fails structural
// validation or does not decode into the state types is corrupt.
func (s *Store) loadFrom(ctx context.Context, tier kv.Tier) (*model.Data, []byte, payloadStatus) {
	raw, ok, err := tier.Get(ctx, DataKey)
	if err != nil {
		s.log.Error("failed to read state", zap.String("tier", tier.Name()), zap.Error(err))
		return nil, nil, payloadAbsent
	}
	if !ok || isNull(raw) {
		return nil, nil, payloadAbsent
	}
	if !json.Valid(raw) {
		s.log.Error("stored state is not valid JSON", zap.String("tier", tier.Name()))
		return nil, nil, payloadAbsent
	}

	if err := schema.Validate(raw); err != nil {
		s.logInvalid(err)
		s.log.Error("stored state is corrupted", zap.String("tier", tier.Name()))
		return nil, raw, payloadCorrupt
	}

	var d model.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.Error("stored state cannot be decoded", zap.String("tier", tier.Name()), zap.Error(err))
		return nil, raw, payloadCorrupt
	}
	return &d, raw, payloadOK
}

func (s *Store) remember(payload []byte) {
	sum := sha256.Sum256(payload)
	s.mu.Lock()
	s.lastWrite = sum
	s.wrote = true
	s.mu.Unlock()
}

// IsOwnWrite reports whether payload is what this store last wrote to the
// primary tier. The change watcher uses it to ignore local saves.
func (s *Store) IsOwnWrite(payload []byte) bool {
	sum := sha256.Sum256(payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wrote && sum == s.lastWrite
}

// Snapshot returns the raw root-state payload held by the primary tier.
func (s *Store) Snapshot(ctx context.Context) ([]byte, bool, error) {
	return s.primary.Get(ctx, DataKey)
}
