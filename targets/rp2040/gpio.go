//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"tinyco/core"
)

var errNotInput = errors.New("gpio: interrupt on a pin that is not an input")

// RPGPIODriver implements core.GPIODriver on machine.Pin. Each pin can be
// claimed once.
type RPGPIODriver struct {
	outputs map[core.GPIOPin]machine.Pin
	inputs  map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		outputs: make(map[core.GPIOPin]machine.Pin),
		inputs:  make(map[core.GPIOPin]machine.Pin),
	}
}

func (d *RPGPIODriver) claimed(pin core.GPIOPin) bool {
	_, out := d.outputs[pin]
	_, in := d.inputs[pin]
	return out || in
}

// ConfigureOutput configures a pin as a digital output, driven low.
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) (core.OutputPin, error) {
	if d.claimed(pin) {
		return nil, core.ErrPinInUse
	}
	// GPIO numbers map straight onto machine.Pin.
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	d.outputs[pin] = p
	return p, nil
}

func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin, pull core.Pull) (core.InputPin, error) {
	if d.claimed(pin) {
		return nil, core.ErrPinInUse
	}
	mode := machine.PinInput
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: mode})
	d.inputs[pin] = p
	return p, nil
}

// ConfigureInterrupt hooks the pin's edge interrupt to latch. The handler
// only samples the level and signals; everything else happens in the task.
func (d *RPGPIODriver) ConfigureInterrupt(pin core.GPIOPin, edge core.Edge, latch *core.EdgeLatch) error {
	p, ok := d.inputs[pin]
	if !ok {
		return errNotInput
	}
	return p.SetInterrupt(toPinChange(edge), func(p machine.Pin) {
		latch.Signal(p.Get())
	})
}

func toPinChange(e core.Edge) machine.PinChange {
	switch e {
	case core.EdgeRising:
		return machine.PinRising
	case core.EdgeFalling:
		return machine.PinFalling
	}
	return machine.PinToggle
}
