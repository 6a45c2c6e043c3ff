package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tinyco/host/sim"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	App        string
	DurationMS uint32
}

func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim [scenario.yaml...]",
		Short: "Run an example against simulated peripherals",
		Long: `Run an example in virtual time and print its log transcript.

Scenario files script pin edges, ADC samples, I2C devices and bus faults.
Without a scenario the configured app runs undisturbed for --duration.

Exit codes:
  0 - every run started and finished
  1 - a task failed to initialize
  2 - command error (unreadable or invalid files)

Examples:
  tinyco sim --app blink --duration 3000
  tinyco sim host/sim/testdata/scenarios/rotary.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := opts.scenarios(cmd, args)
			if err != nil {
				return err
			}
			return runSim(cmd, scenarios)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application to run when no scenario is given")
	cmd.Flags().Uint32Var(&opts.DurationMS, "duration", 5000, "virtual run time in ms when no scenario is given")

	return cmd
}

func (o *SimOptions) scenarios(cmd *cobra.Command, args []string) ([]*sim.Scenario, error) {
	if len(args) > 0 {
		var out []*sim.Scenario
		for _, path := range args {
			s, err := sim.LoadScenario(path)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, path, err)
			}
			out = append(out, s)
		}
		return out, nil
	}

	cfg, err := loadConfig(o.RootOptions)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("app") {
		cfg.App = o.App
	}
	s := &sim.Scenario{Name: cfg.App, DurationMS: o.DurationMS}
	if err := s.Config.Encode(cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "config", err)
	}
	return []*sim.Scenario{s}, nil
}

func runSim(cmd *cobra.Command, scenarios []*sim.Scenario) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, s := range scenarios {
		if len(scenarios) > 1 {
			fmt.Fprintf(out, "== %s ==\n", s.Name)
		}
		res, err := sim.Run(s)
		if err != nil {
			return WrapExitError(ExitCommandError, s.Name, err)
		}
		fmt.Fprint(out, res.Transcript())
		if res.InitErr != nil {
			failed++
		}
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d runs failed to start", failed, len(scenarios)))
	}
	return nil
}
