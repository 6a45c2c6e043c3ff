//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers"

	"tinyco/core"
)

// RPI2CDriver implements core.I2CDriver using TinyGo's machine.I2C for RP2040/RP2350.
type RPI2CDriver struct {
	sda, scl machine.Pin

	// RP2040/RP2350 have I2C0 and I2C1
	buses map[core.I2CBusID]*machine.I2C
}

// NewRPI2CDriver constructs the driver. Every bus is brought up on sda and
// scl, which must belong to that bus's pin group.
func NewRPI2CDriver(sda, scl int) *RPI2CDriver {
	return &RPI2CDriver{
		sda:   machine.Pin(sda),
		scl:   machine.Pin(scl),
		buses: make(map[core.I2CBusID]*machine.I2C),
	}
}

// ConfigureBus initializes a specific I2C bus with the given frequency.
func (d *RPI2CDriver) ConfigureBus(bus core.I2CBusID, frequencyHz uint32) error {
	// Already configured - just update baud rate
	if i2c, ok := d.buses[bus]; ok {
		return i2c.SetBaudRate(frequencyHz)
	}

	var i2c *machine.I2C
	switch bus {
	case 0:
		i2c = machine.I2C0
	case 1:
		i2c = machine.I2C1
	default:
		return errors.New("unsupported I2C bus ID")
	}

	err := i2c.Configure(machine.I2CConfig{
		Frequency: frequencyHz,
		SDA:       d.sda,
		SCL:       d.scl,
	})
	if err != nil {
		return err
	}
	d.buses[bus] = i2c
	return nil
}

// Bus hands out the configured bus. *machine.I2C already has the Tx method
// drivers.I2C asks for.
func (d *RPI2CDriver) Bus(bus core.I2CBusID) (drivers.I2C, error) {
	i2c, ok := d.buses[bus]
	if !ok {
		return nil, errors.New("I2C bus not configured")
	}
	return i2c, nil
}
