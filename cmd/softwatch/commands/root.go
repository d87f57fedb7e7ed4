package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/softwatch/softwatch/pkg/appctx"
	"github.com/softwatch/softwatch/pkg/config"
	"github.com/softwatch/softwatch/pkg/logging"
	"github.com/softwatch/softwatch/pkg/telemetry"
	"github.com/softwatch/softwatch/pkg/version"
)

const cliExecutable = "softwatch"

// NewCommand constructs the top-level softwatch CLI command, wiring global
// flags, configuration loading and logging setup.
func NewCommand() *cobra.Command {
	var (
		configFile     string
		verbosityCount int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Softwatch tracks software versions seen in network traffic",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			cfg := manager.Get()
			level := cfg.Log.Level
			if verbosityCount > 0 {
				level = "debug"
			}
			if err := logging.Configure(level, cfg.Log.Format, cfg.Log.File); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			telemetry.InitMetrics()

			ctx := appctx.WithConfig(cmd.Context(), manager)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewTrackCommand())
	cmd.AddCommand(NewParseCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Info())
		},
	}
}
