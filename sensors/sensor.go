// Package sensors adapts I2C sensors to the periodic poll task. Every call
// takes the lease the caller holds; a sensor never keeps the bus between
// calls.
package sensors

import (
	"tinyco/core"
)

// Sensor is one device on a guarded bus.
type Sensor interface {
	// Name is used as the lease owner and log prefix.
	Name() string

	// Configure checks the device identity and programs it. A failure here
	// is an initialization error.
	Configure(bus core.Lease) error

	// Read runs one measurement. Errors are transient: the caller skips the
	// cycle and tries again on the next tick.
	Read(bus core.Lease) (Reading, error)
}

// Kind tells which fields of a Reading are meaningful.
type Kind uint8

const (
	KindNone Kind = iota
	KindPressure
	KindMagnetic
)

// Reading is a decoded measurement in integer engineering units.
type Reading struct {
	Kind Kind

	// KindPressure
	TempMilliC      int32
	PressureMilliPa int32

	// KindMagnetic: raw counts and milligauss, in X, Y, Z order.
	Raw        [3]int16
	MilliGauss [3]int32
}

// Report renders r as the log lines the poll task emits.
func (r Reading) Report(emit func(string)) {
	switch r.Kind {
	case KindPressure:
		emit("temp: " + core.Decimal(r.TempMilliC, 1000, 1) + " *C")
		emit("pressure: " + core.Decimal(r.PressureMilliPa, 1000, 0) + " Pa")
	case KindMagnetic:
		emit("x=" + core.Decimal(r.MilliGauss[0], 1000, 3) +
			"  y=" + core.Decimal(r.MilliGauss[1], 1000, 3) +
			"  z=" + core.Decimal(r.MilliGauss[2], 1000, 3))
	}
}
