package apps

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"

	"tinyco/config"
	"tinyco/core"
	"tinyco/sensors"
	"tinyco/tasks"
)

// blink spawns the LED heartbeat every application runs in slot 0. An
// Unused LED pin skips it.
func (b *build) blink() error {
	if b.cfg.Pins.LED == config.Unused {
		return nil
	}
	led, err := b.output("led", b.cfg.Pins.LED)
	if err != nil {
		return err
	}
	return b.spawn("blink", tasks.NewBlink(led, b.cfg.Blink.OnMS, b.cfg.Blink.OffMS, b.log("blink")))
}

func buildBlink(b *build) error {
	if b.cfg.Pins.LED == config.Unused {
		return errors.New("blink needs the led pin")
	}
	return b.blink()
}

// buildRotary runs the encoder and, when its switch pin is wired, a button
// task on the switch.
func buildRotary(b *build) error {
	if err := b.blink(); err != nil {
		return err
	}
	a, la, err := b.edgeInput("rotary_a", b.cfg.Pins.RotaryA)
	if err != nil {
		return err
	}
	bb, lb, err := b.edgeInput("rotary_b", b.cfg.Pins.RotaryB)
	if err != nil {
		return err
	}
	if err := b.spawn("rotary", tasks.NewRotary(a, bb, la, lb, b.log("rotary"))); err != nil {
		return err
	}
	if b.cfg.Pins.RotaryButton == config.Unused {
		return nil
	}
	sw, ls, err := b.edgeInput("rotary_button", b.cfg.Pins.RotaryButton)
	if err != nil {
		return err
	}
	return b.spawn("rotary_button", tasks.NewButton(sw, ls, b.cfg.Pins.ActiveLow, b.log("rotary_button")))
}

func buildButton(b *build) error {
	if err := b.blink(); err != nil {
		return err
	}
	in, latch, err := b.edgeInput("button", b.cfg.Pins.Button)
	if err != nil {
		return err
	}
	return b.spawn("button", tasks.NewButton(in, latch, b.cfg.Pins.ActiveLow, b.log("button")))
}

func buildJoystick(b *build) error {
	if err := b.blink(); err != nil {
		return err
	}
	if b.env.ADC == nil {
		return errors.New("no ADC driver")
	}
	cfg := tasks.JoystickConfig{
		X:         core.ADCChannelID(b.cfg.Joystick.X),
		Y:         core.ADCChannelID(b.cfg.Joystick.Y),
		ActiveLow: b.cfg.Pins.ActiveLow,
		Threshold: core.ADCValue(b.cfg.Joystick.Threshold),
	}
	if b.cfg.Pins.JoystickButton != config.Unused {
		pull := core.PullNone
		if b.cfg.Pins.ActiveLow {
			pull = core.PullUp
		}
		pin := b.cfg.Pins.JoystickButton
		in, err := b.env.GPIO.ConfigureInput(core.GPIOPin(pin), pull)
		if err != nil {
			return fmt.Errorf("joystick_button pin %d: %w", pin, err)
		}
		cfg.Button = in
	}
	return b.spawn("joystick", tasks.NewJoystick(b.env.ADC, cfg, b.log("joystick")))
}

func buildI2CScan(b *build) error {
	if err := b.blink(); err != nil {
		return err
	}
	guard, err := b.bus()
	if err != nil {
		return err
	}
	return b.spawn("scan", tasks.NewBusScan(guard, b.log("scan")))
}

// newSensor picks the adapter for a sensor kind.
func newSensor(s config.Sensor) (sensors.Sensor, error) {
	switch s.Kind {
	case config.SensorBMP180:
		return sensors.NewBMP180(s.Address), nil
	case config.SensorHMC5883L:
		return sensors.NewHMC5883L(s.Address), nil
	}
	return nil, fmt.Errorf("unknown sensor kind %q", s.Kind)
}

func buildSensor(b *build) error {
	if err := b.blink(); err != nil {
		return err
	}
	guard, err := b.bus()
	if err != nil {
		return err
	}
	s, err := newSensor(b.cfg.Sensor)
	if err != nil {
		return err
	}
	name := s.Name()
	return b.spawn(name, tasks.NewSensorPoll(s, guard, b.cfg.Sensor.IntervalMS, b.log(name)))
}

// displayOff is the SSD1306 command the display setup sends first; an
// unanswered write means no display.
const displayOff = 0xAE

// spawnDisplayCounter runs the counter drawing on d over the shared bus. d
// must talk through ref, so it only reaches the bus while the counter holds
// a lease. configure runs once the display has acknowledged.
func spawnDisplayCounter(b *build, ref *core.BusRef, d drivers.Displayer, configure func()) error {
	if err := b.blink(); err != nil {
		return err
	}
	guard, err := b.bus()
	if err != nil {
		return err
	}
	addr := b.cfg.Display.Address
	setup := func() error {
		if err := ref.Tx(addr, []byte{0x00, displayOff}, nil); err != nil {
			return fmt.Errorf("%w: display 0x%s", core.ErrNoDevice, core.Hex8(uint8(addr)))
		}
		configure()
		return nil
	}
	counter := tasks.NewCounter(b.log("counter")).WithDisplay(guard, ref, d, setup)
	return b.spawn("counter", counter)
}
