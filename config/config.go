// Package config holds the settings of one firmware application: which
// example runs, its pins, the I2C bus and sensor, the log sink and the host
// monitor. Firmware builds use Default(); host tools load YAML files.
package config

import (
	"fmt"

	"tinyco/core"
)

// Application names.
const (
	AppBlink    = "blink"
	AppRotary   = "rotary"
	AppButton   = "button"
	AppJoystick = "joystick"
	AppI2CScan  = "i2cscan"
	AppBMP180   = "bmp180"
	AppGY271    = "gy271"
	AppOLED     = "oled"
)

// Apps lists every application name in the order the CLI shows them.
var Apps = []string{AppBlink, AppRotary, AppButton, AppJoystick, AppI2CScan, AppBMP180, AppGY271, AppOLED}

// Sensor kinds.
const (
	SensorBMP180   = "bmp180"
	SensorHMC5883L = "hmc5883l"
)

// Bounds on polling intervals.
const (
	MinIntervalMS = 10
	MaxIntervalMS = 60000
)

// Unused marks a pin the application does not need.
const Unused = -1

type Config struct {
	App      string   `yaml:"app"`
	LogLevel string   `yaml:"log_level"`
	Pins     Pins     `yaml:"pins"`
	Blink    Blink    `yaml:"blink"`
	I2C      I2C      `yaml:"i2c"`
	Sensor   Sensor   `yaml:"sensor"`
	Display  Display  `yaml:"display"`
	Joystick Joystick `yaml:"joystick"`
	UART     UART     `yaml:"uart"`
	Monitor  Monitor  `yaml:"monitor"`
}

// Pins are GPIO numbers; Unused disables one.
type Pins struct {
	LED            int  `yaml:"led"`
	RotaryA        int  `yaml:"rotary_a"`
	RotaryB        int  `yaml:"rotary_b"`
	RotaryButton   int  `yaml:"rotary_button"`
	Button         int  `yaml:"button"`
	JoystickButton int  `yaml:"joystick_button"`
	ActiveLow      bool `yaml:"active_low"`
}

type Blink struct {
	OnMS  uint32 `yaml:"on_ms"`
	OffMS uint32 `yaml:"off_ms"`
}

type I2C struct {
	Bus         uint8  `yaml:"bus"`
	FrequencyHz uint32 `yaml:"frequency_hz"`
	SDA         int    `yaml:"sda"`
	SCL         int    `yaml:"scl"`
}

type Sensor struct {
	Kind       string `yaml:"kind"`
	Address    uint16 `yaml:"address"`
	IntervalMS uint32 `yaml:"interval_ms"`
}

type Display struct {
	Address uint16 `yaml:"address"`
	Width   int16  `yaml:"width"`
	Height  int16  `yaml:"height"`
}

// Joystick channels are ADC channel numbers, not GPIOs.
type Joystick struct {
	X         uint8  `yaml:"x"`
	Y         uint8  `yaml:"y"`
	Threshold uint16 `yaml:"threshold"`
}

// UART configures the secondary log sink.
type UART struct {
	Enabled bool   `yaml:"enabled"`
	Baud    uint32 `yaml:"baud"`
	TX      int    `yaml:"tx"`
	RX      int    `yaml:"rx"`
}

type Monitor struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	MQTT MQTT   `yaml:"mqtt"`
}

// MQTT forwarding is off while Broker is empty.
type MQTT struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Prefix   string `yaml:"prefix"`
}

// Default returns the settings for a Raspberry Pi Pico running blink.
func Default() *Config {
	return &Config{
		App:      AppBlink,
		LogLevel: "info",
		Pins: Pins{
			LED:            25,
			RotaryA:        2,
			RotaryB:        3,
			RotaryButton:   6,
			Button:         15,
			JoystickButton: 22,
			ActiveLow:      true,
		},
		Blink: Blink{OnMS: 200, OffMS: 800},
		I2C:   I2C{Bus: 0, FrequencyHz: 400000, SDA: 4, SCL: 5},
		Display: Display{
			Address: 0x3C,
			Width:   128,
			Height:  64,
		},
		Joystick: Joystick{X: 0, Y: 1, Threshold: 20},
		UART:     UART{Baud: 115200, TX: 0, RX: 1},
		Monitor: Monitor{
			Port: "/dev/ttyACM0",
			Baud: 115200,
			MQTT: MQTT{Prefix: "tinyco"},
		},
	}
}

// ForApp returns Default() switched to app, with the sensor filled in for
// the sensor examples.
func ForApp(app string) *Config {
	c := Default()
	c.App = app
	c.applySensorDefaults()
	return c
}

func (c *Config) applySensorDefaults() {
	switch c.App {
	case AppBMP180:
		if c.Sensor.Kind == "" {
			c.Sensor.Kind = SensorBMP180
		}
	case AppGY271:
		if c.Sensor.Kind == "" {
			c.Sensor.Kind = SensorHMC5883L
		}
	}
	switch c.Sensor.Kind {
	case SensorBMP180:
		if c.Sensor.Address == 0 {
			c.Sensor.Address = 0x77
		}
		if c.Sensor.IntervalMS == 0 {
			c.Sensor.IntervalMS = 500
		}
	case SensorHMC5883L:
		if c.Sensor.Address == 0 {
			c.Sensor.Address = 0x1E
		}
		if c.Sensor.IntervalMS == 0 {
			c.Sensor.IntervalMS = 50
		}
	}
}

// Validate checks the settings the selected application depends on.
func (c *Config) Validate() error {
	if !knownApp(c.App) {
		return fmt.Errorf("unknown app %q", c.App)
	}
	if _, ok := core.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.Pins.LED != Unused && (c.Blink.OnMS == 0 || c.Blink.OffMS == 0) {
		return fmt.Errorf("blink on_ms and off_ms must be positive")
	}

	if c.usesBus() {
		if c.I2C.FrequencyHz == 0 {
			return fmt.Errorf("i2c frequency_hz is required")
		}
	}
	if c.usesSensor() {
		switch c.Sensor.Kind {
		case SensorBMP180, SensorHMC5883L:
		default:
			return fmt.Errorf("unknown sensor kind %q", c.Sensor.Kind)
		}
		if err := checkAddress("sensor", c.Sensor.Address); err != nil {
			return err
		}
		if c.Sensor.IntervalMS < MinIntervalMS || c.Sensor.IntervalMS > MaxIntervalMS {
			return fmt.Errorf("sensor interval_ms %d outside %d..%d",
				c.Sensor.IntervalMS, MinIntervalMS, MaxIntervalMS)
		}
	}
	if c.App == AppOLED {
		if err := checkAddress("display", c.Display.Address); err != nil {
			return err
		}
		if c.Display.Width <= 0 || c.Display.Height <= 0 {
			return fmt.Errorf("display size %dx%d is not positive", c.Display.Width, c.Display.Height)
		}
	}
	if c.App == AppJoystick && c.Joystick.X == c.Joystick.Y {
		return fmt.Errorf("joystick x and y share ADC channel %d", c.Joystick.X)
	}
	if c.UART.Enabled && c.UART.Baud == 0 {
		return fmt.Errorf("uart baud is required when enabled")
	}

	return c.checkPins()
}

func (c *Config) checkPins() error {
	owners := make(map[int]string)
	claim := func(name string, pin int) error {
		if pin == Unused {
			return nil
		}
		if pin < 0 {
			return fmt.Errorf("pin %s: invalid number %d", name, pin)
		}
		if other, ok := owners[pin]; ok {
			return fmt.Errorf("pin %d used by both %s and %s", pin, other, name)
		}
		owners[pin] = name
		return nil
	}

	for _, p := range c.usedPins() {
		if err := claim(p.name, p.pin); err != nil {
			return err
		}
	}
	return nil
}

type namedPin struct {
	name string
	pin  int
}

// usedPins lists the pins the selected application claims. Only these can
// conflict. Every application blinks the LED.
func (c *Config) usedPins() []namedPin {
	pins := []namedPin{{"led", c.Pins.LED}}
	switch c.App {
	case AppRotary:
		pins = append(pins,
			namedPin{"rotary_a", c.Pins.RotaryA},
			namedPin{"rotary_b", c.Pins.RotaryB},
			namedPin{"rotary_button", c.Pins.RotaryButton})
	case AppButton:
		pins = append(pins, namedPin{"button", c.Pins.Button})
	case AppJoystick:
		pins = append(pins, namedPin{"joystick_button", c.Pins.JoystickButton})
	}
	if c.usesBus() {
		pins = append(pins, namedPin{"i2c.sda", c.I2C.SDA}, namedPin{"i2c.scl", c.I2C.SCL})
	}
	if c.UART.Enabled {
		pins = append(pins, namedPin{"uart.tx", c.UART.TX}, namedPin{"uart.rx", c.UART.RX})
	}
	return pins
}

func (c *Config) usesBus() bool {
	switch c.App {
	case AppI2CScan, AppBMP180, AppGY271, AppOLED:
		return true
	}
	return false
}

func (c *Config) usesSensor() bool {
	return c.App == AppBMP180 || c.App == AppGY271
}

func checkAddress(what string, addr uint16) error {
	if addr < uint16(core.I2CFirstAddress) || addr > uint16(core.I2CLastAddress) {
		return fmt.Errorf("%s address 0x%02X outside 0x%02X..0x%02X",
			what, addr, core.I2CFirstAddress, core.I2CLastAddress)
	}
	return nil
}

func knownApp(name string) bool {
	for _, a := range Apps {
		if a == name {
			return true
		}
	}
	return false
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() core.Level {
	if lvl, ok := core.ParseLevel(c.LogLevel); ok {
		return lvl
	}
	return core.LevelInfo
}
