package clock

import (
	"context"
	"time"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/flip"
	"github.com/oshokin/flipclock/internal/logger"
	"github.com/oshokin/flipclock/internal/scheduler"
)

// TickInterval is the fixed period of the clock loop.
const TickInterval = time.Second

// Core owns the clock state and is the only component that reads the wall
// clock for time-based behavior.
type Core struct {
	// engine drives the digit cards.
	engine *flip.Engine
	// scheduler decides when alarms fire.
	scheduler *scheduler.Scheduler
	// now reads the wall clock; replaced in tests.
	now func() time.Time
}

// NewCore creates a core from an engine and a loaded scheduler.
func NewCore(engine *flip.Engine, sched *scheduler.Scheduler) *Core {
	return &Core{
		engine:    engine,
		scheduler: sched,
		now:       time.Now,
	}
}

// Now returns the current wall-clock time.
func (c *Core) Now() time.Time {
	return c.now()
}

// Tick drives both subsystems from one snapshot of now.
// A panic inside one tick is logged and swallowed so the next tick still runs.
func (c *Core) Tick(ctx context.Context, now time.Time) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Tick panicked", "panic", r, "now", now.Format(time.TimeOnly))

			fired = false
		}
	}()

	if _, err := c.engine.Apply(flip.Digits(now)); err != nil {
		logger.ErrorKV(ctx, "Flip engine rejected time", "error", err)
	}

	return c.scheduler.Tick(ctx, now)
}

// Slots returns the card state for rendering.
func (c *Core) Slots() [flip.SlotCount]flip.Slot {
	return c.engine.Snapshot()
}

// List returns the alarms in display order.
func (c *Core) List() []alarm.Entry {
	return c.scheduler.List()
}

// Add validates and stores a new alarm.
func (c *Core) Add(ctx context.Context, hourText, minuteText string) (alarm.Entry, error) {
	return c.scheduler.Add(ctx, hourText, minuteText)
}

// Remove deletes the alarm at index in display order.
func (c *Core) Remove(ctx context.Context, index int) (alarm.Entry, error) {
	return c.scheduler.Remove(ctx, index)
}

// TestFire runs the alarm action for the current minute, bypassing the guard.
// The action outlives the request that triggered it.
func (c *Core) TestFire(ctx context.Context) alarm.Entry {
	at := alarm.At(c.now())
	c.scheduler.Fire(context.WithoutCancel(ctx), at)

	return at
}

// Close stops pending flip commits and waits for running alarm actions.
func (c *Core) Close() {
	c.engine.Stop()
	c.scheduler.Wait()
}

// Loop ticks once immediately and then every TickInterval until ctx is done.
func (c *Core) Loop(ctx context.Context) {
	c.Tick(ctx, c.now())

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, clock loop exiting")

			return
		case <-ticker.C:
			c.Tick(ctx, c.now())
		}
	}
}
