package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tinyco/config"
)

func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [config.yaml]",
		Short: "Validate a config file and print it with defaults filled in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := *rootOpts
			if len(args) == 1 {
				opts.ConfigPath = args[0]
			}
			cfg, err := loadConfig(&opts)
			if err != nil {
				return err
			}
			return printConfig(cmd, cfg)
		},
	}
}

func printConfig(cmd *cobra.Command, cfg *config.Config) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
