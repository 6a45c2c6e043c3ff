package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Pull selects an input's bias resistor.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// OutputPin is the set_level capability.
type OutputPin interface {
	Set(high bool)
}

// InputPin is the read_level capability.
type InputPin interface {
	Get() bool
}

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
//
// Every Configure call claims the pin. A pin can be claimed once; a second
// claim returns ErrPinInUse, so each handle has exactly one owner.
type GPIODriver interface {
	// ConfigureOutput claims pin as a push-pull output, initially low.
	ConfigureOutput(pin GPIOPin) (OutputPin, error)

	// ConfigureInput claims pin as an input with the given bias.
	ConfigureInput(pin GPIOPin, pull Pull) (InputPin, error)

	// ConfigureInterrupt signals latch from the pin's interrupt on every
	// edge matching edge. The pin must already be claimed as an input.
	ConfigureInterrupt(pin GPIOPin, edge Edge, latch *EdgeLatch) error
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
