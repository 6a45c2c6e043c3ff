package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyco/core"
)

func TestDefaultIsValid(t *testing.T) {
	for _, app := range Apps {
		t.Run(app, func(t *testing.T) {
			require.NoError(t, ForApp(app).Validate())
		})
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
app: gy271
log_level: debug
i2c:
  frequency_hz: 100000
monitor:
  mqtt:
    broker: tcp://localhost:1883
`))
	require.NoError(t, err)

	assert.Equal(t, AppGY271, c.App)
	assert.Equal(t, core.LevelDebug, c.Level())
	assert.Equal(t, uint32(100000), c.I2C.FrequencyHz)
	assert.Equal(t, 4, c.I2C.SDA)
	assert.Equal(t, SensorHMC5883L, c.Sensor.Kind)
	assert.Equal(t, uint16(0x1E), c.Sensor.Address)
	assert.Equal(t, uint32(50), c.Sensor.IntervalMS)
	assert.Equal(t, "tcp://localhost:1883", c.Monitor.MQTT.Broker)
	assert.Equal(t, "tinyco", c.Monitor.MQTT.Prefix)
}

func TestParseEmptyDocument(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("app: blink\nblnk:\n  on_ms: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown app", func(c *Config) { c.App = "toaster" }, `unknown app "toaster"`},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, `unknown log level "loud"`},
		{"blink zero", func(c *Config) { c.Blink.OffMS = 0 }, "blink on_ms and off_ms must be positive"},
		{"interval low", func(c *Config) {
			*c = *ForApp(AppBMP180)
			c.Sensor.IntervalMS = 5
		}, "sensor interval_ms 5 outside 10..60000"},
		{"interval high", func(c *Config) {
			*c = *ForApp(AppGY271)
			c.Sensor.IntervalMS = 60001
		}, "sensor interval_ms 60001 outside 10..60000"},
		{"reserved address", func(c *Config) {
			*c = *ForApp(AppBMP180)
			c.Sensor.Address = 0x78
		}, "sensor address 0x78 outside 0x08..0x77"},
		{"low address", func(c *Config) {
			*c = *ForApp(AppOLED)
			c.Display.Address = 0x03
		}, "display address 0x03 outside 0x08..0x77"},
		{"sensor kind", func(c *Config) {
			*c = *ForApp(AppBMP180)
			c.Sensor.Kind = "dht22"
		}, `unknown sensor kind "dht22"`},
		{"rotary conflict", func(c *Config) {
			c.App = AppRotary
			c.Pins.RotaryB = c.Pins.RotaryA
		}, "pin 2 used by both rotary_a and rotary_b"},
		{"rotary switch on led", func(c *Config) {
			c.App = AppRotary
			c.Pins.RotaryButton = c.Pins.LED
		}, "pin 25 used by both led and rotary_button"},
		{"button on led", func(c *Config) {
			c.App = AppButton
			c.Pins.Button = 25
		}, "pin 25 used by both led and button"},
		{"sensor app blink zero", func(c *Config) {
			*c = *ForApp(AppGY271)
			c.Blink.OnMS = 0
		}, "blink on_ms and off_ms must be positive"},
		{"uart on i2c pins", func(c *Config) {
			c.App = AppI2CScan
			c.UART.Enabled = true
			c.UART.TX = 4
		}, "pin 4 used by both i2c.sda and uart.tx"},
		{"joystick channels", func(c *Config) {
			c.App = AppJoystick
			c.Joystick.Y = c.Joystick.X
		}, "joystick x and y share ADC channel 0"},
		{"negative pin", func(c *Config) {
			c.App = AppButton
			c.Pins.Button = -7
		}, "pin button: invalid number -7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestUnusedPinsDoNotConflict(t *testing.T) {
	c := ForApp(AppJoystick)
	c.Pins.JoystickButton = Unused
	c.Pins.LED = Unused
	require.NoError(t, c.Validate())

	c = ForApp(AppGY271)
	c.Pins.LED = Unused
	c.Blink.OnMS = 0
	require.NoError(t, c.Validate(), "no LED, no blink timing")

	// Pins of other applications are ignored.
	c = ForApp(AppBlink)
	c.Pins.RotaryA = c.Pins.LED
	require.NoError(t, c.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: oled\ndisplay:\n  height: 32\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AppOLED, c.App)
	assert.Equal(t, int16(32), c.Display.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
