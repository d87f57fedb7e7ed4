package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/softwatch/softwatch/pkg/software"
)

// NewParseCommand parses banner strings from the command line and prints the
// structured result, for poking at the version heuristic.
func NewParseCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <banner> [banner...]",
		Short: "Parse software banners and print the structured versions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, banner := range args {
				obs := software.ParseBanner(banner)

				if asJSON {
					data, err := json.MarshalIndent(obs, "", "  ")
					if err != nil {
						return fmt.Errorf("marshal observation: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					continue
				}

				if obs.Name == "" {
					color.Yellow("%-30s -> no name/version boundary found", banner)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s -> %s %s\n",
					banner,
					color.GreenString(obs.Name),
					color.CyanString(obs.Version.String()),
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print observations as JSON")
	return cmd
}
