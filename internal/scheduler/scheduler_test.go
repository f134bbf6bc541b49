package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/repository/alarms"
)

var (
	errTestLoad = errors.New("test load error")
	errTestSave = errors.New("test save error")
	errTestFire = errors.New("synthesis unavailable")
)

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// entries is the list returned from Load.
	entries []alarm.Entry
	// loadErr is the error returned from Load.
	loadErr error
	// saveErr is the error returned from Save.
	saveErr error
	// saved stores the last list passed to Save.
	saved []alarm.Entry
	// saves counts Save calls.
	saves int
}

func (m *memoryRepository) Load(context.Context) ([]alarm.Entry, error) {
	return m.entries, m.loadErr
}

func (m *memoryRepository) Save(_ context.Context, entries []alarm.Entry) error {
	m.saves++

	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = entries

	return nil
}

// recordingAction counts fired alarms.
type recordingAction struct {
	mu    sync.Mutex
	fired []alarm.Entry
	err   error
}

func (r *recordingAction) Fire(_ context.Context, at alarm.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fired = append(r.fired, at)

	return r.err
}

func (r *recordingAction) calls() []alarm.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]alarm.Entry(nil), r.fired...)
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 10, 16, hour, minute, second, 0, time.Local)
}

func newLoaded(t *testing.T, repo *memoryRepository, action Action, opts ...Option) *Scheduler {
	t.Helper()

	s := New(repo, action, opts...)
	s.Load(context.Background())

	return s
}

// TestLoad_SeedsDefaultWhenAbsentOrBroken covers stored, missing and unreadable lists.
func TestLoad_SeedsDefaultWhenAbsentOrBroken(t *testing.T) {
	t.Parallel()

	stored := []alarm.Entry{{Hour: 7}, {Hour: 12, Minute: 30}}
	s := newLoaded(t, &memoryRepository{entries: stored}, nil)
	require.Equal(t, stored, s.List())

	for _, loadErr := range []error{alarms.ErrNotFound, errTestLoad} {
		repo := &memoryRepository{loadErr: loadErr}
		s = newLoaded(t, repo, nil)
		require.Equal(t, []alarm.Entry{alarm.DefaultEntry}, s.List())
		// The seed is kept in memory only.
		require.Zero(t, repo.saves)
	}

	s = New(nil, nil)
	s.Load(context.Background())
	require.Equal(t, []alarm.Entry{alarm.DefaultEntry}, s.List())
}

// TestAdd_KeepsDuplicateFreeSuperset verifies successful adds persist a superset without duplicates.
func TestAdd_KeepsDuplicateFreeSuperset(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}}
	s := newLoaded(t, repo, nil)

	entry, err := s.Add(context.Background(), "9", "0")
	require.NoError(t, err)
	require.Equal(t, alarm.Entry{Hour: 9}, entry)
	require.Equal(t, []alarm.Entry{{Hour: 8, Minute: 50}, {Hour: 9}}, repo.saved)

	_, err = s.Add(context.Background(), "08", "50")
	require.ErrorIs(t, err, alarm.ErrDuplicate)
	require.True(t, alarm.IsValidation(err))
	require.Len(t, s.List(), 2)
	require.Equal(t, 1, repo.saves)
}

// TestAdd_RejectsInvalidInput checks that bad input never changes the list.
func TestAdd_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}}
	s := newLoaded(t, repo, nil)
	before := s.List()

	for _, input := range [][2]string{{"25", "0"}, {"10", "70"}, {"a", "5"}} {
		_, err := s.Add(context.Background(), input[0], input[1])
		require.Error(t, err)
		require.True(t, alarm.IsValidation(err), "%v", input)
	}

	require.Equal(t, before, s.List())
	require.Zero(t, repo.saves)
}

// TestAdd_RollsBackOnPersistFailure keeps memory and storage consistent.
func TestAdd_RollsBackOnPersistFailure(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}, saveErr: errTestSave}
	s := newLoaded(t, repo, nil)

	_, err := s.Add(context.Background(), "9", "0")
	require.ErrorIs(t, err, errTestSave)
	require.False(t, alarm.IsValidation(err))
	require.Equal(t, []alarm.Entry{{Hour: 8, Minute: 50}}, s.List())
}

// TestRemove_UsesDisplayOrder deletes by the sorted index, not the storage index.
func TestRemove_UsesDisplayOrder(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{entries: []alarm.Entry{{Hour: 9}, {Hour: 8, Minute: 50}, {Hour: 8, Minute: 5}}}
	s := newLoaded(t, repo, nil)

	require.Equal(t, []alarm.Entry{{Hour: 8, Minute: 5}, {Hour: 8, Minute: 50}, {Hour: 9}}, s.List())

	removed, err := s.Remove(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, alarm.Entry{Hour: 8, Minute: 5}, removed)
	require.Equal(t, []alarm.Entry{{Hour: 9}, {Hour: 8, Minute: 50}}, repo.saved)

	_, err = s.Remove(context.Background(), 2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.Remove(context.Background(), -1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

// TestLoad_DropsStoredDuplicates keeps the first copy of a repeated entry so
// one removal per displayed row empties the list.
func TestLoad_DropsStoredDuplicates(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}, {Hour: 7}, {Hour: 8, Minute: 50}}}
	s := newLoaded(t, repo, nil)

	require.Equal(t, []alarm.Entry{{Hour: 7}, {Hour: 8, Minute: 50}}, s.List())

	removed, err := s.Remove(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, alarm.Entry{Hour: 8, Minute: 50}, removed)
	require.Equal(t, []alarm.Entry{{Hour: 7}}, repo.saved)
	require.Equal(t, []alarm.Entry{{Hour: 7}}, s.List())

	_, err = s.Remove(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, repo.saved)
	require.Empty(t, s.List())
}

// TestTick_FiresOncePerMinute walks through the guard lifecycle around 08:50.
func TestTick_FiresOncePerMinute(t *testing.T) {
	t.Parallel()

	action := new(recordingAction)
	s := newLoaded(t, &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}}, action)
	ctx := context.Background()

	require.Empty(t, s.Guard())

	require.True(t, s.Tick(ctx, at(8, 50, 0)))
	require.Equal(t, "8:50", s.Guard())

	// Same minute, later second: suppressed.
	require.False(t, s.Tick(ctx, at(8, 50, 1)))
	require.False(t, s.Tick(ctx, at(8, 50, 30)))

	// The guard survives until the zero second of a later minute.
	require.False(t, s.Tick(ctx, at(8, 50, 59)))
	require.Equal(t, "8:50", s.Guard())

	require.False(t, s.Tick(ctx, at(8, 51, 0)))
	require.Empty(t, s.Guard())

	s.Wait()
	require.Equal(t, []alarm.Entry{{Hour: 8, Minute: 50}}, action.calls())

	// Next day, same minute fires again.
	require.True(t, s.Tick(ctx, at(8, 50, 0).AddDate(0, 0, 1)))
	s.Wait()
	require.Len(t, action.calls(), 2)
}

// TestTick_GuardClearsOnlyAtZeroSecond checks that a non-zero second in a new minute keeps the guard.
func TestTick_GuardClearsOnlyAtZeroSecond(t *testing.T) {
	t.Parallel()

	action := new(recordingAction)
	s := newLoaded(t, &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}, {Hour: 8, Minute: 51}}}, action)
	ctx := context.Background()

	require.True(t, s.Tick(ctx, at(8, 50, 10)))

	// A skipped zero second leaves the old guard in place, which does not block a different key.
	require.True(t, s.Tick(ctx, at(8, 51, 2)))
	require.Equal(t, "8:51", s.Guard())

	s.Wait()
	require.Equal(t, []alarm.Entry{{Hour: 8, Minute: 50}, {Hour: 8, Minute: 51}}, action.calls())
}

// TestTick_FailedActionStillGuards ensures a failing action is not retried within the minute.
func TestTick_FailedActionStillGuards(t *testing.T) {
	t.Parallel()

	action := &recordingAction{err: errTestFire}
	s := newLoaded(t, &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}}, action)
	ctx := context.Background()

	require.True(t, s.Tick(ctx, at(8, 50, 0)))
	require.False(t, s.Tick(ctx, at(8, 50, 1)))

	s.Wait()
	require.Len(t, action.calls(), 1)
}

// TestTick_DailyChime fires the built-in 20:50 alarm only when enabled.
func TestTick_DailyChime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	off := newLoaded(t, &memoryRepository{entries: []alarm.Entry{}}, new(recordingAction))
	require.False(t, off.Tick(ctx, at(20, 50, 0)))

	action := new(recordingAction)
	on := newLoaded(t, &memoryRepository{entries: []alarm.Entry{}}, action, WithDailyChime(true))
	require.True(t, on.Tick(ctx, at(20, 50, 0)))
	require.Equal(t, "20:50", on.Guard())

	on.Wait()
	require.Equal(t, []alarm.Entry{ChimeEntry}, action.calls())
}

// TestTick_SharedGuardDropsSameMinuteCollision documents that the chime and a user alarm
// at the same minute produce a single action, not two.
func TestTick_SharedGuardDropsSameMinuteCollision(t *testing.T) {
	t.Parallel()

	action := new(recordingAction)
	s := newLoaded(t, &memoryRepository{entries: []alarm.Entry{{Hour: 20, Minute: 50}}}, action, WithDailyChime(true))
	ctx := context.Background()

	require.True(t, s.Tick(ctx, at(20, 50, 0)))
	require.False(t, s.Tick(ctx, at(20, 50, 1)))

	s.Wait()
	require.Len(t, action.calls(), 1)
}

// TestFire_BypassesGuard checks manual firing ignores and keeps the guard.
func TestFire_BypassesGuard(t *testing.T) {
	t.Parallel()

	action := new(recordingAction)
	s := newLoaded(t, &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}}, action)
	ctx := context.Background()

	require.True(t, s.Tick(ctx, at(8, 50, 0)))

	s.Fire(ctx, alarm.Entry{Hour: 8, Minute: 50})
	s.Fire(ctx, alarm.Entry{Hour: 8, Minute: 50})
	s.Wait()

	require.Len(t, action.calls(), 3)
	require.Equal(t, "8:50", s.Guard())
}

// TestDispatch_RecoversPanics ensures a panicking action does not take the process down.
func TestDispatch_RecoversPanics(t *testing.T) {
	t.Parallel()

	s := newLoaded(t, &memoryRepository{entries: []alarm.Entry{{Hour: 8, Minute: 50}}}, ActionFunc(
		func(context.Context, alarm.Entry) error {
			panic("audio device vanished")
		},
	))

	require.True(t, s.Tick(context.Background(), at(8, 50, 0)))
	s.Wait()
}
