package clock

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/flip"
	"github.com/oshokin/flipclock/internal/scheduler"
)

type recordingAction struct {
	mu    sync.Mutex
	fired []alarm.Entry
}

func (r *recordingAction) Fire(_ context.Context, at alarm.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fired = append(r.fired, at)

	return nil
}

func (r *recordingAction) calls() []alarm.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]alarm.Entry(nil), r.fired...)
}

func newTestCore(action scheduler.Action) *Core {
	sched := scheduler.New(nil, action)
	sched.Load(context.Background())

	return NewCore(flip.NewEngine(), sched)
}

// TestCore_TickDrivesBothSubsystems checks one tick stages digits and fires the default alarm.
func TestCore_TickDrivesBothSubsystems(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		action := new(recordingAction)
		core := newTestCore(action)

		now := time.Date(2026, time.October, 16, 8, 50, 0, 0, time.Local)
		require.True(t, core.Tick(context.Background(), now))

		for _, slot := range core.Slots() {
			require.Equal(t, slot.Front != slot.Back, slot.Flipping, slot.Position.String())
		}

		time.Sleep(flip.FlipDelay)
		synctest.Wait()

		require.False(t, core.Tick(context.Background(), now.Add(time.Second)))

		time.Sleep(flip.FlipDelay)
		synctest.Wait()
		core.Close()

		require.Equal(t, []alarm.Entry{alarm.DefaultEntry}, action.calls())
		require.Equal(t, "085001", core.engine.Front())
	})
}

// TestCore_TickRecoversPanic keeps the loop alive when a subsystem panics.
func TestCore_TickRecoversPanic(t *testing.T) {
	t.Parallel()

	sched := scheduler.New(nil, nil)
	sched.Load(context.Background())

	core := NewCore(nil, sched)

	require.NotPanics(t, func() {
		require.False(t, core.Tick(context.Background(), time.Now()))
	})
}

// TestCore_TestFireUsesCurrentMinute bypasses the guard and leaves the list untouched.
func TestCore_TestFireUsesCurrentMinute(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		action := new(recordingAction)
		core := newTestCore(action)
		core.now = func() time.Time { return time.Date(2026, time.October, 16, 21, 3, 30, 0, time.Local) }

		require.Equal(t, alarm.Entry{Hour: 21, Minute: 3}, core.TestFire(context.Background()))
		require.Equal(t, alarm.Entry{Hour: 21, Minute: 3}, core.TestFire(context.Background()))

		core.Close()

		require.Len(t, action.calls(), 2)
		require.Equal(t, []alarm.Entry{alarm.DefaultEntry}, core.List())
	})
}

// TestCore_AddRemove delegates list edits to the scheduler.
func TestCore_AddRemove(t *testing.T) {
	t.Parallel()

	core := newTestCore(nil)
	ctx := context.Background()

	_, err := core.Add(ctx, "6", "0")
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 6}, alarm.DefaultEntry}, core.List())

	_, err = core.Add(ctx, "6", "00")
	require.ErrorIs(t, err, alarm.ErrDuplicate)

	removed, err := core.Remove(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, alarm.DefaultEntry, removed)

	_, err = core.Remove(ctx, 1)
	require.ErrorIs(t, err, scheduler.ErrIndexOutOfRange)
}

// TestCore_Loop ticks once per second until canceled.
func TestCore_Loop(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		core := newTestCore(nil)
		start := time.Now()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		go func() {
			defer close(done)

			core.Loop(ctx)
		}()

		time.Sleep(3*TickInterval + flip.FlipDelay + 50*time.Millisecond)
		synctest.Wait()

		require.Equal(t, flip.Digits(start.Add(3*TickInterval)), core.engine.Front())

		cancel()
		<-done
		core.Close()
	})
}
