package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"tinyco/config"
	"tinyco/core"
	"tinyco/host/monitor"
	"tinyco/host/serial"
)

// MonitorOptions holds flags for the monitor command. Flags override the
// config file.
type MonitorOptions struct {
	*RootOptions
	Port     string
	Baud     int
	App      string
	Broker   string
	ClientID string
	Prefix   string
	Level    string
	Depth    int
}

func NewMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MonitorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print a board's log records, optionally forwarding them to MQTT",
		Long: `Read telemetry frames from a serial port and print the log records.

With --mqtt, every record is also published as JSON to
<prefix>/<app>/log on the broker.

Examples:
  tinyco monitor --port /dev/ttyACM0
  tinyco monitor -c bench.yaml --mqtt tcp://localhost:1883`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMonitor(ctx, cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "serial device (default from config)")
	cmd.Flags().IntVar(&opts.Baud, "baud", 0, "baud rate (default from config)")
	cmd.Flags().StringVar(&opts.App, "app", "", "application name used in MQTT topics")
	cmd.Flags().StringVar(&opts.Broker, "mqtt", "", "MQTT broker URL")
	cmd.Flags().StringVar(&opts.ClientID, "client-id", "", "MQTT client id (default derived from the machine id)")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "MQTT topic prefix")
	cmd.Flags().StringVar(&opts.Level, "level", "", "lowest level to show (debug|info|warn|error)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 256, "records queued before the oldest are dropped")

	return cmd
}

// apply overlays explicitly set flags on cfg.
func (o *MonitorOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Monitor.Port = o.Port
	}
	if f.Changed("baud") {
		cfg.Monitor.Baud = o.Baud
	}
	if f.Changed("app") {
		cfg.App = o.App
	}
	if f.Changed("mqtt") {
		cfg.Monitor.MQTT.Broker = o.Broker
	}
	if f.Changed("client-id") {
		cfg.Monitor.MQTT.ClientID = o.ClientID
	}
	if f.Changed("prefix") {
		cfg.Monitor.MQTT.Prefix = o.Prefix
	}
	if f.Changed("level") {
		cfg.LogLevel = o.Level
	}
}

func runMonitor(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *MonitorOptions) error {
	level, ok := core.ParseLevel(cfg.LogLevel)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown log level %q", cfg.LogLevel))
	}

	sinks := []monitor.Sink{monitor.NewConsole(cmd.OutOrStdout())}
	if mq := cfg.Monitor.MQTT; mq.Broker != "" {
		sink, err := monitor.DialMQTT(mq.Broker, mq.ClientID, mq.Prefix, cfg.App)
		if err != nil {
			return WrapExitError(ExitCommandError, "mqtt", err)
		}
		glog.Infof("forwarding to %s", monitor.Topic(mq.Prefix, cfg.App))
		sinks = append(sinks, sink)
	}

	sc := serial.DefaultConfig(cfg.Monitor.Port)
	sc.Baud = cfg.Monitor.Baud
	port, err := serial.Open(sc)
	if err != nil {
		for _, s := range sinks {
			s.Close()
		}
		return WrapExitError(ExitCommandError, "open port", err)
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", sc.Device, err)
	}
	glog.Infof("monitoring %s at %d baud", sc.Device, sc.Baud)

	m := monitor.New(port, opts.Depth, sinks, monitor.WithMinLevel(level))
	if err := m.Run(ctx); err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "monitor", err)
	}
	return nil
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "config", err)
	}
	return cfg, nil
}
