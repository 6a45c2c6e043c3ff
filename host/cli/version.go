package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tinyco/config"
	"tinyco/protocol"
)

// Version is overridden at link time with -ldflags "-X tinyco/host/cli.Version=...".
var Version = "dev"

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version, telemetry format and known apps",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tinyco %s\n", Version)
			fmt.Fprintf(out, "telemetry format %s\n", protocol.Version)
			fmt.Fprintf(out, "apps: %v\n", config.Apps)
		},
	}
}
