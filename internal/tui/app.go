package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/flip"
)

// Clock is the part of the clock core the display drives.
type Clock interface {
	Now() time.Time
	Tick(ctx context.Context, now time.Time) bool
	Slots() [flip.SlotCount]flip.Slot
	List() []alarm.Entry
	Add(ctx context.Context, hourText, minuteText string) (alarm.Entry, error)
	Remove(ctx context.Context, index int) (alarm.Entry, error)
	TestFire(ctx context.Context) alarm.Entry
}

// mode is which prompt, if any, has focus.
type mode int

const (
	modeClock mode = iota
	modeAdd
	modeDelete
)

// tickMsg asks the model to run one clock tick.
type tickMsg struct{}

// CommitMsg reports that a slot finished flipping. Send it from the flip
// engine's commit hook so the card redraws without waiting for the next tick.
type CommitMsg struct {
	Slot flip.Slot
}

// App is the bubbletea model of the clock display.
type App struct {
	ctx      context.Context //nolint:containedctx // Carries the logger into core calls made from Update.
	clock    Clock
	interval time.Duration

	mode  mode
	input textinput.Model
	keys  keyMap
	help  help.Model

	status    string
	statusErr bool
}

// NewApp builds the display model. interval is the tick period.
func NewApp(ctx context.Context, clock Clock, interval time.Duration) *App {
	input := textinput.New()
	input.CharLimit = 5
	input.Width = 8

	return &App{
		ctx:      ctx,
		clock:    clock,
		interval: interval,
		input:    input,
		keys:     newKeyMap(),
		help:     help.New(),
	}
}

// Init ticks immediately so the first frame shows the current time.
func (a *App) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg{} }
}

// Update handles ticks, commit notifications and key presses.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		a.clock.Tick(a.ctx, a.clock.Now())

		return a, a.scheduleTick()
	case CommitMsg:
		return a, nil
	case tea.WindowSizeMsg:
		a.help.Width = msg.Width

		return a, nil
	case tea.KeyMsg:
		if a.mode == modeClock {
			return a.handleClockKey(msg)
		}

		return a.handlePromptKey(msg)
	}

	return a, nil
}

func (a *App) scheduleTick() tea.Cmd {
	return tea.Every(a.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (a *App) handleClockKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Add):
		return a, a.openPrompt(modeAdd, "HH:MM", 5)
	case key.Matches(msg, a.keys.Delete):
		if len(a.clock.List()) == 0 {
			a.setError("no alarms to delete")

			return a, nil
		}

		return a, a.openPrompt(modeDelete, "index", 3)
	case key.Matches(msg, a.keys.Test):
		at := a.clock.TestFire(a.ctx)
		a.setStatus(fmt.Sprintf("Test signal for %s", at))
	}

	return a, nil
}

func (a *App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closePrompt()
		a.setStatus("")

		return a, nil
	case key.Matches(msg, a.keys.Submit):
		value := a.input.Value()

		if a.mode == modeAdd {
			a.submitAdd(value)
		} else {
			a.submitDelete(value)
		}

		a.closePrompt()

		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	return a, cmd
}

func (a *App) submitAdd(value string) {
	entry, err := alarm.ParseClock(value)
	if err != nil {
		a.setError(err.Error())

		return
	}

	entry, err = a.clock.Add(a.ctx, strconv.Itoa(entry.Hour), strconv.Itoa(entry.Minute))
	if err != nil {
		a.setError(err.Error())

		return
	}

	a.setStatus(fmt.Sprintf("Added %s", entry))
}

func (a *App) submitDelete(value string) {
	index, err := strconv.Atoi(value)
	if err != nil {
		a.setError(fmt.Sprintf("index %q is not a number", value))

		return
	}

	entry, err := a.clock.Remove(a.ctx, index)
	if err != nil {
		a.setError(err.Error())

		return
	}

	a.setStatus(fmt.Sprintf("Removed %s", entry))
}

func (a *App) openPrompt(m mode, placeholder string, limit int) tea.Cmd {
	a.mode = m
	a.input.Reset()
	a.input.Placeholder = placeholder
	a.input.CharLimit = limit
	a.setStatus("")

	return a.input.Focus()
}

func (a *App) closePrompt() {
	a.mode = modeClock
	a.input.Blur()
	a.input.Reset()
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusErr = false
}

func (a *App) setError(text string) {
	a.status = text
	a.statusErr = true
}
