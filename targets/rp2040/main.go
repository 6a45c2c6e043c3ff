//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"tinyco/apps"
	"tinyco/config"
	"tinyco/core"
	quadpio "tinyco/targets/pio"
)

// appName selects the example at link time:
//
//	tinygo flash -target pico -ldflags "-X main.appName=rotary" ./targets/rp2040
var appName = config.AppBlink

// Records queued for the telemetry writer before new ones are dropped.
const logDepth = 32

func main() {
	// Disable watchdog on boot to clear any previous state
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	cfg := config.ForApp(appName)
	clock := hwClock{}

	sink := newTelemetrySink(cfg.UART)
	logger := core.NewLogger(clock, sink.write)
	logger.StartAsync(logDepth)

	var gpio core.GPIODriver = NewRPGPIODriver()
	var sampler *quadpio.Sampler
	// Adjacent encoder pins can be sampled by PIO instead of interrupts.
	if cfg.App == config.AppRotary && cfg.Pins.RotaryB == cfg.Pins.RotaryA+1 {
		lines := quadpio.NewLines(gpio, core.GPIOPin(cfg.Pins.RotaryA))
		sampler = quadpio.NewSampler(0, 0, lines)
		gpio = lines
	}

	env := apps.Env{
		Clock:  clock,
		GPIO:   gpio,
		I2C:    NewRPI2CDriver(cfg.I2C.SDA, cfg.I2C.SCL),
		ADC:    NewRPAdcDriver(),
		Logger: logger,
	}
	core.SetGPIODriver(env.GPIO)
	core.SetI2CDriver(env.I2C)
	core.SetADCDriver(env.ADC)

	app, err := apps.Build(cfg, env)
	if err != nil {
		logger.Named("main").Error(err.Error())
		halt()
	}
	if sampler != nil {
		if err := sampler.Start(); err != nil {
			logger.Named("main").Error("pio sampler: " + err.Error())
			halt()
		}
	}

	// Run only returns on an init failure; the error is already logged.
	app.Sched.Run(context.Background())
	halt()
}

// halt parks the core while the logger drains.
func halt() {
	for {
		time.Sleep(time.Second)
	}
}
