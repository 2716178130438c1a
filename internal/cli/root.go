// Package cli implements the smokegen command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the smokegen CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "smokegen",
		Short:         "Generate smoke services from Swagger/OpenAPI models",
		Long:          "smokegen generates the model, client, HTTP binding and application scaffold of a smoke service from a Swagger 2.0 or OpenAPI 3.0 model.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Flag errors such as unknown flags become usage errors carrying the help text.
	flagError := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagError)
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}
	return cmd
}
