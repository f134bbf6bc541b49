package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/flipclock/internal/config"
	client "github.com/oshokin/flipclock/internal/service/client"
	"github.com/oshokin/flipclock/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the control address from config.
	serverAddress string

	// rootCmd represents the base command for controlling a running clock.
	rootCmd = &cobra.Command{
		Use:   "flipclock-ctl",
		Short: "Manage the alarms of a running flip clock.",
		Long: `Connects to a running flipclock over gRPC to list, add and remove alarms,
or to fire the time signal once for testing.
Every change is logged by the clock together with the calling user and host.`,
		SilenceUsage: true,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the alarms with their indices.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.List(cmd.Context(), options(cmd))
		},
	}

	addCmd = &cobra.Command{
		Use:   "add HH MM",
		Short: "Add an alarm.",
		Args:  cobra.ExactArgs(2), //nolint:mnd // Hour and minute.
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Add(cmd.Context(), options(cmd), args[0], args[1])
		},
	}

	removeCmd = &cobra.Command{
		Use:   "remove INDEX",
		Short: "Remove the alarm at INDEX as printed by list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index %q is not a number", args[0])
			}

			return client.Remove(cmd.Context(), options(cmd), index)
		},
	}

	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Fire the time signal for the current minute.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Test(cmd.Context(), options(cmd))
		},
	}
)

func options(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	}
}

// Execute runs the flipclock-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above.
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "address", "a", "", "control address, overrides the configuration file")

	rootCmd.AddCommand(listCmd, addCmd, removeCmd, testCmd)
}
