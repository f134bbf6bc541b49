package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/flipclock/internal/config"
	"github.com/oshokin/flipclock/internal/service/clock"
	"github.com/oshokin/flipclock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// headless disables the terminal display.
	headless bool
	// allowMultiple skips the single-instance check.
	allowMultiple bool

	// rootCmd represents the base command for running the clock.
	rootCmd = &cobra.Command{
		Use:   "flipclock",
		Short: "Run the flip clock and its time-signal alarms.",
		Long: `Shows a six-digit flip clock and fires the configured time signal at each stored alarm.

Alarms are kept in a JSON file and can be edited from the terminal display,
with flipclock-ctl over gRPC, or through the optional HTTP API.
The time signal plays a WAV clip or announces the time through a VOICEVOX-compatible engine.
Use --headless to run without the display, e.g. as a login service.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return clock.Run(ctx, &clock.Options{
				ConfigPath:    configPath,
				Headless:      headless,
				AllowMultiple: allowMultiple,
			})
		},
	}
)

// Execute runs the flipclock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without the terminal display")
	rootCmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "skip the single-instance check")

	rootCmd.AddCommand(autostartCmd)
}
