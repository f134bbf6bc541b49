package flip

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// FlipDelay is the time between staging a digit and committing it to the front face.
// It is just under the one-second tick so the animation completes before the next comparison.
const FlipDelay = 900 * time.Millisecond

// Position identifies one of the six digit slots.
type Position int

// Slot positions in HHMMSS order.
const (
	HourTens Position = iota
	HourOnes
	MinuteTens
	MinuteOnes
	SecondTens
	SecondOnes

	// SlotCount is the number of digit slots.
	SlotCount = 6
)

// String returns the slot name used in logs and the HTTP API.
func (p Position) String() string {
	switch p {
	case HourTens:
		return "hour-tens"
	case HourOnes:
		return "hour-ones"
	case MinuteTens:
		return "minute-tens"
	case MinuteOnes:
		return "minute-ones"
	case SecondTens:
		return "second-tens"
	case SecondOnes:
		return "second-ones"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// OverlapPolicy decides what happens when a slot changes again while a commit is pending.
type OverlapPolicy int

const (
	// OverlapKeep lets the pending commit fire with its own captured digit.
	OverlapKeep OverlapPolicy = iota
	// OverlapReplace stops the pending commit before scheduling the new one.
	OverlapReplace
)

// ErrInvalidDigits is returned when the input is not six ASCII digits.
var ErrInvalidDigits = errors.New("time string must be six digits")

// Slot is the visible state of one digit card.
type Slot struct {
	// Position is the fixed slot identity.
	Position Position
	// Front is the committed digit shown on the card.
	Front byte
	// Back is the staged digit revealed by the flip.
	Back byte
	// Flipping is true between staging and commit.
	Flipping bool
}

// Option configures the engine.
type Option func(*Engine)

// WithDelay overrides FlipDelay.
func WithDelay(delay time.Duration) Option {
	return func(e *Engine) {
		if delay > 0 {
			e.delay = delay
		}
	}
}

// WithOverlapPolicy sets the overlap policy.
func WithOverlapPolicy(policy OverlapPolicy) Option {
	return func(e *Engine) {
		e.overlap = policy
	}
}

// WithOnCommit registers a hook called after every front-face commit,
// outside the engine lock. The display uses it to redraw.
func WithOnCommit(hook func(Slot)) Option {
	return func(e *Engine) {
		e.onCommit = hook
	}
}

// Engine owns the six digit slots.
type Engine struct {
	// slots holds the card state, indexed by Position.
	slots [SlotCount]Slot
	// pending holds the latest commit timer per slot.
	pending [SlotCount]*time.Timer
	// delay is the staging-to-commit interval.
	delay time.Duration
	// overlap decides how a second change treats a pending commit.
	overlap OverlapPolicy
	// onCommit is notified after each commit.
	onCommit func(Slot)
	// stopped disables commits scheduled before Stop.
	stopped bool
	// mu protects slots, pending and stopped; commits run on timer goroutines.
	mu sync.Mutex
}

// NewEngine creates an engine with every front face showing '0'.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		delay: FlipDelay,
	}

	for i := range e.slots {
		e.slots[i] = Slot{
			Position: Position(i),
			Front:    '0',
			Back:     '0',
		}
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Digits formats t as the HHMMSS string consumed by Apply.
func Digits(t time.Time) string {
	return t.Format("150405")
}

// Apply compares digits with the front faces and starts a flip for every
// position that changed. It returns the positions that started a transition.
func (e *Engine) Apply(digits string) ([]Position, error) {
	if err := validate(digits); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, nil
	}

	var changed []Position

	for i := range e.slots {
		next := digits[i]

		slot := &e.slots[i]
		if slot.Front == next {
			continue
		}

		slot.Back = next
		slot.Flipping = true

		if e.overlap == OverlapReplace && e.pending[i] != nil {
			e.pending[i].Stop()
		}

		position := Position(i)
		e.pending[i] = time.AfterFunc(e.delay, func() {
			e.commit(position, next)
		})

		changed = append(changed, position)
	}

	return changed, nil
}

// commit writes the captured digit to the front face and ends the flip.
func (e *Engine) commit(position Position, digit byte) {
	e.mu.Lock()

	if e.stopped {
		e.mu.Unlock()

		return
	}

	slot := &e.slots[position]
	slot.Front = digit
	slot.Flipping = false
	snapshot := *slot
	hook := e.onCommit

	e.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
}

// Snapshot returns a copy of all slots.
func (e *Engine) Snapshot() [SlotCount]Slot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.slots
}

// Front returns the committed HHMMSS string.
func (e *Engine) Front() string {
	snapshot := e.Snapshot()

	digits := make([]byte, SlotCount)
	for i, slot := range snapshot {
		digits[i] = slot.Front
	}

	return string(digits)
}

// Stop cancels pending commits. Apply is a no-op afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true

	for i, timer := range e.pending {
		if timer != nil {
			timer.Stop()
			e.pending[i] = nil
		}
	}
}

func validate(digits string) error {
	if len(digits) != SlotCount {
		return fmt.Errorf("%w: %q", ErrInvalidDigits, digits)
	}

	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidDigits, digits)
		}
	}

	return nil
}
