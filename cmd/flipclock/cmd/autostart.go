package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/flipclock/internal/service/autostart"
)

// autostartCmd manages the login autostart entry.
var autostartCmd = &cobra.Command{
	Use:       "autostart enable|disable|status",
	Short:     "Manage launching the clock at login.",
	Long:      "Registers or removes a login autostart entry that runs this executable with the current --config file.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"enable", "disable", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		app, err := autostart.NewApp(configPath)
		if err != nil {
			return err
		}

		switch args[0] {
		case "enable":
			return autostart.Enable(ctx, app)
		case "disable":
			return autostart.Disable(ctx, app)
		default:
			state := "disabled"
			if autostart.Status(app) {
				state = "enabled"
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "autostart %s\n", state)

			return err
		}
	},
}
