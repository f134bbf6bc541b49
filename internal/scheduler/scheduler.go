package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/logger"
	"github.com/oshokin/flipclock/internal/repository/alarms"
)

// Action is the side effect triggered when an alarm fires.
type Action interface {
	Fire(ctx context.Context, at alarm.Entry) error
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(ctx context.Context, at alarm.Entry) error

// Fire calls f.
func (f ActionFunc) Fire(ctx context.Context, at alarm.Entry) error {
	return f(ctx, at)
}

// ChimeEntry is the built-in daily announcement time.
//
//nolint:gochecknoglobals // Immutable value type.
var ChimeEntry = alarm.Entry{Hour: 20, Minute: 50}

// ErrIndexOutOfRange is returned by Remove for an index outside the displayed list.
var ErrIndexOutOfRange = errors.New("alarm index out of range")

// Option configures the scheduler.
type Option func(*Scheduler)

// WithDailyChime enables the built-in 20:50 announcement.
func WithDailyChime(enabled bool) Option {
	return func(s *Scheduler) {
		s.chime = enabled
	}
}

// Scheduler owns the alarm list and the fire guard.
type Scheduler struct {
	// repo persists the alarm list.
	repo alarms.Repository
	// action is invoked when an alarm fires.
	action Action
	// chime enables the built-in daily alarm.
	chime bool
	// entries is the alarm list in storage (insertion) order.
	entries []alarm.Entry
	// guard is the key of the last fired alarm, empty when unset.
	guard string
	// mu protects entries and guard.
	mu sync.Mutex
	// inflight tracks running actions.
	inflight sync.WaitGroup
}

// New creates a scheduler with an empty list. Call Load before ticking.
func New(repo alarms.Repository, action Action, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:   repo,
		action: action,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads the stored list. A missing, unreadable or corrupt list seeds the
// default 08:50 entry in memory; it is written on the next change.
func (s *Scheduler) Load(ctx context.Context) {
	var (
		entries []alarm.Entry
		err     error
	)

	if s.repo != nil {
		entries, err = s.repo.Load(ctx)
	} else {
		err = alarms.ErrNotFound
	}

	switch {
	case err == nil:
	case errors.Is(err, alarms.ErrNotFound):
		logger.InfoKV(ctx, "No stored alarms, seeding default", "entry", alarm.DefaultEntry.String())

		entries = []alarm.Entry{alarm.DefaultEntry}
	default:
		logger.WarnKV(ctx, "Stored alarms unusable, seeding default", "error", err)

		entries = []alarm.Entry{alarm.DefaultEntry}
	}

	entries = dedupe(ctx, entries)

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarms loaded", "count", len(entries))
}

// dedupe drops repeated hour and minute pairs from a stored list, keeping the first.
func dedupe(ctx context.Context, entries []alarm.Entry) []alarm.Entry {
	unique := make([]alarm.Entry, 0, len(entries))

	for _, entry := range entries {
		if alarm.Contains(unique, entry) {
			logger.WarnKV(ctx, "Dropping duplicate stored alarm", "entry", entry.String())

			continue
		}

		unique = append(unique, entry)
	}

	return unique
}

// List returns the alarms in display order.
func (s *Scheduler) List() []alarm.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return alarm.Sorted(s.entries)
}

// Add validates user input and appends a new alarm.
// Validation failures leave the list unchanged and match alarm.IsValidation.
func (s *Scheduler) Add(ctx context.Context, hourText, minuteText string) (alarm.Entry, error) {
	entry, err := alarm.Parse(hourText, minuteText)
	if err != nil {
		return alarm.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if alarm.Contains(s.entries, entry) {
		return alarm.Entry{}, fmt.Errorf("%w: %s", alarm.ErrDuplicate, entry)
	}

	next := append(slices.Clone(s.entries), entry)
	if err = s.persist(ctx, next); err != nil {
		return alarm.Entry{}, err
	}

	s.entries = next

	logger.InfoKV(ctx, "Alarm added", "entry", entry.String(), "count", len(next))

	return entry, nil
}

// Remove deletes the alarm at index in display order.
func (s *Scheduler) Remove(ctx context.Context, index int) (alarm.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := alarm.Sorted(s.entries)
	if index < 0 || index >= len(sorted) {
		return alarm.Entry{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(sorted))
	}

	target := sorted[index]
	pos := slices.Index(s.entries, target)
	next := slices.Delete(slices.Clone(s.entries), pos, pos+1)

	if err := s.persist(ctx, next); err != nil {
		return alarm.Entry{}, err
	}

	s.entries = next

	logger.InfoKV(ctx, "Alarm removed", "entry", target.String(), "count", len(next))

	return target, nil
}

// Tick evaluates the alarms against now and reports whether one fired.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	key := alarm.At(now).Key()

	s.mu.Lock()

	if now.Second() == 0 && s.guard != "" && s.guard != key {
		logger.DebugKV(ctx, "Fire guard cleared", "guard", s.guard, "now", key)

		s.guard = ""
	}

	candidates := s.entries
	if s.chime {
		candidates = append([]alarm.Entry{ChimeEntry}, candidates...)
	}

	var (
		fired bool
		hit   alarm.Entry
	)

	for _, entry := range candidates {
		if !entry.Matches(now) || s.guard == key {
			continue
		}

		s.guard = key
		fired = true
		hit = entry

		break
	}

	s.mu.Unlock()

	if fired {
		s.dispatch(ctx, hit, "scheduled")
	}

	return fired
}

// Fire runs the action for at immediately, bypassing the guard.
func (s *Scheduler) Fire(ctx context.Context, at alarm.Entry) {
	s.dispatch(ctx, at, "manual")
}

// Guard returns the key of the last fired alarm, or "" when clear.
func (s *Scheduler) Guard() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.guard
}

// Wait blocks until every dispatched action has returned.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// dispatch runs the action on its own goroutine. Failures are logged and dropped.
func (s *Scheduler) dispatch(ctx context.Context, at alarm.Entry, trigger string) {
	if s.action == nil {
		return
	}

	ctx = logger.WithKV(ctx, "fire_id", uuid.NewString(), "alarm", at.String(), "trigger", trigger)
	logger.Info(ctx, "Alarm fired")

	s.inflight.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorKV(ctx, "Alarm action panicked", "panic", r)
			}
		}()

		if err := s.action.Fire(ctx, at); err != nil {
			logger.ErrorKV(ctx, "Alarm action failed", "error", err)

			return
		}

		logger.Debug(ctx, "Alarm action finished")
	})
}

func (s *Scheduler) persist(ctx context.Context, entries []alarm.Entry) error {
	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, entries); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)

		return fmt.Errorf("persist alarms: %w", err)
	}

	return nil
}
