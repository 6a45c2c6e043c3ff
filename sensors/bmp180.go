package sensors

import (
	"tinyco/core"

	"tinygo.org/x/drivers/bmp180"
)

// BMP180 wraps the tinygo BMP180 driver. The driver keeps its bus for life,
// so it is bound to a BusRef that only routes while a lease is attached.
type BMP180 struct {
	ref core.BusRef
	dev bmp180.Device
}

// NewBMP180 returns an adapter for a BMP180 at addr, or at the default
// address 0x77 when addr is 0.
func NewBMP180(addr uint16) *BMP180 {
	s := &BMP180{}
	s.dev = bmp180.New(&s.ref)
	if addr != 0 {
		s.dev.Address = addr
	}
	return s
}

func (s *BMP180) Name() string { return "bmp180" }

// Configure verifies the chip id and loads the calibration coefficients.
func (s *BMP180) Configure(bus core.Lease) error {
	s.ref.Attach(bus)
	defer s.ref.Detach()

	if !s.dev.Connected() {
		return core.ErrNoDevice
	}
	s.dev.Configure()
	return nil
}

// Read samples temperature and pressure. The driver waits out each
// conversion internally, so one read holds the bus for roughly 30 ms.
func (s *BMP180) Read(bus core.Lease) (Reading, error) {
	s.ref.Attach(bus)
	defer s.ref.Detach()

	temp, err := s.dev.ReadTemperature()
	if err != nil {
		return Reading{}, core.Transient(err)
	}
	pressure, err := s.dev.ReadPressure()
	if err != nil {
		return Reading{}, core.Transient(err)
	}
	return Reading{Kind: KindPressure, TempMilliC: temp, PressureMilliPa: pressure}, nil
}
