package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/oshokin/flipclock/internal/logger"
)

const (
	// AppName is the autostart entry identifier.
	AppName = "flipclock"
	// DisplayName is shown by desktop session managers.
	DisplayName = "Flip Clock"
)

// NewApp describes the current executable launched with the given config file.
func NewApp(configPath string) (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("resolve symlinks: %w", err)
	}

	args := []string{execPath}

	if configPath != "" {
		absConfig, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}

		args = append(args, "--config", absConfig)
	}

	return &autostart.App{
		Name:        AppName,
		DisplayName: DisplayName,
		Exec:        args,
	}, nil
}

// Enable registers the app unless it is already registered.
func Enable(ctx context.Context, app *autostart.App) error {
	if app.IsEnabled() {
		logger.Info(ctx, "Autostart already enabled")

		return nil
	}

	if err := app.Enable(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	logger.InfoKV(ctx, "Autostart enabled", "exec", app.Exec)

	return nil
}

// Disable removes the registration if present.
func Disable(ctx context.Context, app *autostart.App) error {
	if !app.IsEnabled() {
		logger.Info(ctx, "Autostart already disabled")

		return nil
	}

	if err := app.Disable(); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}

	logger.Info(ctx, "Autostart disabled")

	return nil
}

// Status reports whether the app is registered.
func Status(app *autostart.App) bool {
	return app.IsEnabled()
}
