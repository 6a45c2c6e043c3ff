// Package apps assembles the example applications. Each builder claims the
// peripherals its config names and spawns its tasks on a fresh Scheduler;
// the firmware main and the host simulator both go through Build.
package apps

import (
	"errors"
	"fmt"

	"tinyco/config"
	"tinyco/core"
)

var ErrUnknownApp = errors.New("unknown app")

// Env carries the drivers and clock of the platform the app runs on.
type Env struct {
	Clock  core.Clock
	GPIO   core.GPIODriver
	I2C    core.I2CDriver
	ADC    core.ADCDriver
	Logger *core.Logger

	// Options are passed to the scheduler after the logger option.
	Options []core.Option
}

// App is a built application ready to Start.
type App struct {
	Name   string
	Config *config.Config
	Sched  *core.Scheduler
	Logger *core.Logger

	// Guard is nil for apps without an I2C bus.
	Guard *core.BusGuard

	tasks map[string]core.Task
}

// Task returns the task spawned under name.
func (a *App) Task(name string) (core.Task, bool) {
	t, ok := a.tasks[name]
	return t, ok
}

// Builder spawns an application's tasks.
type Builder func(b *build) error

var builders = make(map[string]Builder)

// Register adds a builder under name. Registering a name twice panics.
func Register(name string, fn Builder) {
	if _, exists := builders[name]; exists {
		panic("apps: builder registered twice: " + name)
	}
	builders[name] = fn
}

func init() {
	Register(config.AppBlink, buildBlink)
	Register(config.AppRotary, buildRotary)
	Register(config.AppButton, buildButton)
	Register(config.AppJoystick, buildJoystick)
	Register(config.AppI2CScan, buildI2CScan)
	Register(config.AppBMP180, buildSensor)
	Register(config.AppGY271, buildSensor)
}

// Build validates cfg and wires the selected application onto env. The
// returned App has not been started.
func Build(cfg *config.Config, env Env) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fn, ok := builders[cfg.App]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, cfg.App)
	}
	if env.Clock == nil {
		env.Clock = core.SystemClock{}
	}
	if env.Logger == nil {
		env.Logger = core.NewLogger(env.Clock, nil)
	}
	env.Logger.SetLevel(cfg.Level())

	opts := append([]core.Option{core.WithLogger(env.Logger)}, env.Options...)
	app := &App{
		Name:   cfg.App,
		Config: cfg,
		Sched:  core.NewScheduler(env.Clock, opts...),
		Logger: env.Logger,
		tasks:  make(map[string]core.Task),
	}
	b := &build{app: app, env: env, cfg: cfg}
	if err := fn(b); err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.App, err)
	}
	return app, nil
}

// build is the state a Builder works on.
type build struct {
	app *App
	env Env
	cfg *config.Config
}

func (b *build) spawn(name string, t core.Task) error {
	if _, err := b.app.Sched.Spawn(name, t); err != nil {
		return fmt.Errorf("spawn %s: %w", name, err)
	}
	b.app.tasks[name] = t
	return nil
}

func (b *build) log(task string) *core.TaskLog {
	return b.app.Logger.Named(task)
}

func (b *build) output(name string, pin int) (core.OutputPin, error) {
	if b.env.GPIO == nil {
		return nil, errors.New("no GPIO driver")
	}
	p, err := b.env.GPIO.ConfigureOutput(core.GPIOPin(pin))
	if err != nil {
		return nil, fmt.Errorf("%s pin %d: %w", name, pin, err)
	}
	return p, nil
}

// edgeInput claims pin as an input whose every edge signals the returned
// latch.
func (b *build) edgeInput(name string, pin int) (core.InputPin, *core.EdgeLatch, error) {
	if b.env.GPIO == nil {
		return nil, nil, errors.New("no GPIO driver")
	}
	pull := core.PullNone
	if b.cfg.Pins.ActiveLow {
		pull = core.PullUp
	}
	in, err := b.env.GPIO.ConfigureInput(core.GPIOPin(pin), pull)
	if err != nil {
		return nil, nil, fmt.Errorf("%s pin %d: %w", name, pin, err)
	}
	latch := core.NewEdgeLatch(b.app.Sched.Notify)
	if err := b.env.GPIO.ConfigureInterrupt(core.GPIOPin(pin), core.EdgeBoth, latch); err != nil {
		return nil, nil, fmt.Errorf("%s pin %d interrupt: %w", name, pin, err)
	}
	return in, latch, nil
}

// bus brings up the configured I2C bus and puts it behind the app's guard.
func (b *build) bus() (*core.BusGuard, error) {
	if b.app.Guard != nil {
		return b.app.Guard, nil
	}
	if b.env.I2C == nil {
		return nil, errors.New("no I2C driver")
	}
	id := core.I2CBusID(b.cfg.I2C.Bus)
	if err := b.env.I2C.ConfigureBus(id, b.cfg.I2C.FrequencyHz); err != nil {
		return nil, fmt.Errorf("i2c%d: %w", id, err)
	}
	raw, err := b.env.I2C.Bus(id)
	if err != nil {
		return nil, fmt.Errorf("i2c%d: %w", id, err)
	}
	b.app.Guard = core.NewBusGuard(raw, b.app.Sched.Notify)
	return b.app.Guard, nil
}
