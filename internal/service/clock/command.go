package clock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/oshokin/flipclock/internal/api/grpc/control"
	"github.com/oshokin/flipclock/internal/api/rest"
	"github.com/oshokin/flipclock/internal/audio"
	"github.com/oshokin/flipclock/internal/config"
	"github.com/oshokin/flipclock/internal/flip"
	"github.com/oshokin/flipclock/internal/logger"
	"github.com/oshokin/flipclock/internal/repository/alarms"
	"github.com/oshokin/flipclock/internal/scheduler"
	"github.com/oshokin/flipclock/internal/service/instance"
	"github.com/oshokin/flipclock/internal/timesignal"
	"github.com/oshokin/flipclock/internal/tui"
)

// Options controls the flipclock process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Headless runs the clock loop without the terminal display.
	Headless bool
	// AllowMultiple skips the single-instance check.
	AllowMultiple bool
	// Player overrides the audio output; nil opens the default device.
	Player audio.Player
}

// shutdownTimeout bounds the HTTP server shutdown.
const shutdownTimeout = 5 * time.Second

// Run starts the clock and blocks until ctx is canceled or the display quits.
//
//nolint:funlen // Wiring of every subsystem lives in one place.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// The terminal display owns stdout, so logs go to a file.
	if !opts.Headless {
		fileLogger, closeLog, err := logger.OpenFile(settings.LogFile, logger.AtomicLevel())
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}

		previous := logger.Logger()
		logger.SetLogger(fileLogger)
		ctx = logger.ToContext(ctx, fileLogger)

		defer func() {
			logger.SetLogger(previous)

			_ = closeLog()
		}()
	}

	ctx = logger.WithName(ctx, "flipclock")

	if !opts.AllowMultiple {
		if err = instance.EnsureSingle(); err != nil {
			return err
		}
	}

	player := opts.Player
	if player == nil {
		player = audio.NewDevicePlayer()
	}

	action, err := timesignal.New(ctx, &settings.TimeSignal, player)
	if err != nil {
		return fmt.Errorf("initialise time signal: %w", err)
	}

	sched := scheduler.New(
		alarms.NewFileRepository(settings.AlarmsFile),
		action,
		scheduler.WithDailyChime(settings.DailyChime),
	)
	sched.Load(ctx)

	// program is assigned before the first tick, and only ticks stage flips.
	var program *tea.Program

	engineOpts := []flip.Option{flip.WithOverlapPolicy(overlapPolicy(settings.Flip.Overlap))}
	if !opts.Headless {
		engineOpts = append(engineOpts, flip.WithOnCommit(func(slot flip.Slot) {
			program.Send(tui.CommitMsg{Slot: slot})
		}))
	}

	core := NewCore(flip.NewEngine(engineOpts...), sched)
	defer core.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)

	controlAddress := config.AddressOff
	if settings.ControlEnabled() {
		lc := net.ListenConfig{}

		lis, err := lc.Listen(ctx, "tcp", settings.ControlAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", settings.ControlAddress, err)
		}

		controlAddress = lis.Addr().String()

		grpcServer := grpc.NewServer(grpc.UnaryInterceptor(control.LoggingInterceptor(ctx)))
		control.Register(grpcServer, control.NewServer(core))

		group.Go(func() error {
			return serveControl(groupCtx, grpcServer, lis)
		})
	}

	httpAddress := config.AddressOff
	if settings.HTTPEnabled() {
		httpAddress = settings.HTTPAddress

		httpServer := &http.Server{
			Addr:              settings.HTTPAddress,
			Handler:           rest.NewRouter(ctx, core, settings.CORS.AllowedOrigins),
			ReadHeaderTimeout: shutdownTimeout,
		}

		group.Go(func() error {
			return serveHTTP(groupCtx, httpServer)
		})
	}

	logger.InfoKV(ctx, "Flip clock started",
		"control_address", controlAddress,
		"http_address", httpAddress,
		"alarms_file", settings.AlarmsFile,
		"mode", settings.TimeSignal.Mode,
		"headless", opts.Headless,
	)

	if opts.Headless {
		group.Go(func() error {
			core.Loop(groupCtx)

			return nil
		})
	} else {
		program = tea.NewProgram(tui.NewApp(ctx, core, TickInterval), tea.WithAltScreen(), tea.WithContext(groupCtx))

		group.Go(func() error {
			// Quitting the display stops the servers too.
			defer cancel()

			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("run display: %w", err)
			}

			return nil
		})
	}

	return group.Wait()
}

// serveControl runs the gRPC server until ctx is done.
func serveControl(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// serveHTTP runs the HTTP API until ctx is done.
func serveHTTP(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve HTTP: %w", err)
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}

	return nil
}

func overlapPolicy(name string) flip.OverlapPolicy {
	if name == config.OverlapReplace {
		return flip.OverlapReplace
	}

	return flip.OverlapKeep
}
