package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/flipclock/internal/config"
	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/logger"
	"github.com/oshokin/flipclock/internal/service/common"
)

// ErrControlDisabled is returned when the settings turn the control server off
// and no address override is given.
var ErrControlDisabled = errors.New("control server is disabled in settings, pass --address")

// Options configures a flipclock-ctl invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the control address from config when specified.
	ServerAddress string
	// Out receives the printed alarm list; defaults to stdout.
	Out io.Writer
}

// List prints the alarms in display order.
func List(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(ctx context.Context, c *common.Client) error {
		entries, err := c.ListAlarms(ctx)
		if err != nil {
			return err
		}

		printEntries(opts.out(), entries)

		return nil
	})
}

// Add submits a new alarm and prints the updated list.
func Add(ctx context.Context, opts *Options, hourText, minuteText string) error {
	return withClient(ctx, opts, func(ctx context.Context, c *common.Client) error {
		entries, err := c.AddAlarm(ctx, hourText, minuteText)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Alarm added", "hour", hourText, "minute", minuteText)
		printEntries(opts.out(), entries)

		return nil
	})
}

// Remove deletes the alarm at the displayed index and prints the updated list.
func Remove(ctx context.Context, opts *Options, index int) error {
	return withClient(ctx, opts, func(ctx context.Context, c *common.Client) error {
		entries, err := c.RemoveAlarm(ctx, index)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Alarm removed", "index", index)
		printEntries(opts.out(), entries)

		return nil
	})
}

// Test fires the alarm action on the clock for the current minute.
func Test(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(ctx context.Context, c *common.Client) error {
		at, err := c.TestAlarm(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(opts.out(), "test signal sent for %s\n", at)

		return err
	})
}

// withClient loads settings, connects with the caller's identity and runs fn.
func withClient(ctx context.Context, opts *Options, fn func(context.Context, *common.Client) error) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "flipclock-ctl")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ControlAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	if !config.Enabled(serverAddress) {
		return ErrControlDisabled
	}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to clock", "server_address", serverAddress, "actor", actor.String())

	return fn(ctx, client)
}

func (o *Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}

	return o.Out
}

// printEntries writes one "[index] HH:MM" line per alarm.
func printEntries(w io.Writer, entries []alarm.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "no alarms")

		return
	}

	for i, entry := range entries {
		_, _ = fmt.Fprintf(w, "[%d] %s\n", i, entry)
	}
}
