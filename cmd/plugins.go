package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/opsreport/app/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the registered source and metrics sink types",
	// Listing needs no configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "sources: %s\n", strings.Join(plugins.Sources(), ", "))
		fmt.Fprintf(cmd.OutOrStdout(), "sinks:   %s\n", strings.Join(plugins.Sinks(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
