// Package cli implements the tinyco host tool.
package cli

import (
	"flag"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command. glog's flags (-v, -logtostderr
// and friends) are exposed as persistent flags.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tinyco",
		Short: "Host tools for the tinyco firmware examples",
		Long: `Host tools for the tinyco firmware examples.

monitor decodes the telemetry frames a board writes to its USB or UART
port; sim runs an example against simulated peripherals in virtual time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "application config file (YAML)")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cmd.AddCommand(NewMonitorCommand(opts))
	cmd.AddCommand(NewSimCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
