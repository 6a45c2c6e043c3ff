package sensors

import (
	"errors"

	"tinyco/core"
)

// HMC5883L register map.
const (
	HMC5883LAddress = 0x1E

	hmcConfigA = 0x00
	hmcConfigB = 0x01
	hmcMode    = 0x02
	hmcDataX   = 0x03
	hmcIdentA  = 0x0A

	// 8 samples averaged, 15 Hz, normal measurement.
	hmcConfigAValue = 0x70
	// Gain 1.3 Ga full scale.
	hmcConfigBValue = 0x20
	hmcContinuous   = 0x00

	// Counts per gauss at the gain above.
	hmcCountsPerGauss = 1090

	// Reported by the chip on an axis overflow.
	hmcOverflow = -4096
)

var hmcIdent = [3]byte{'H', '4', '3'}

var errOverflow = errors.New("magnetometer axis overflow")

// HMC5883L is the magnetometer on GY-271 boards.
type HMC5883L struct {
	addr uint16
	buf  [6]byte
}

// NewHMC5883L returns a magnetometer at addr, or at 0x1E when addr is 0.
func NewHMC5883L(addr uint16) *HMC5883L {
	if addr == 0 {
		addr = HMC5883LAddress
	}
	return &HMC5883L{addr: addr}
}

func (m *HMC5883L) Name() string { return "hmc5883l" }

// Configure checks the identification registers and starts continuous
// measurement.
func (m *HMC5883L) Configure(bus core.Lease) error {
	id := m.buf[:3]
	if err := bus.Tx(m.addr, []byte{hmcIdentA}, id); err != nil {
		return err
	}
	if id[0] != hmcIdent[0] || id[1] != hmcIdent[1] || id[2] != hmcIdent[2] {
		return core.ErrNoDevice
	}

	for _, w := range [][]byte{
		{hmcConfigA, hmcConfigAValue},
		{hmcConfigB, hmcConfigBValue},
		{hmcMode, hmcContinuous},
	} {
		if err := bus.Tx(m.addr, w, nil); err != nil {
			return err
		}
	}
	return nil
}

// Read fetches one field vector. The chip stores the axes as X, Z, Y.
func (m *HMC5883L) Read(bus core.Lease) (Reading, error) {
	if err := bus.Tx(m.addr, []byte{hmcDataX}, m.buf[:]); err != nil {
		return Reading{}, core.Transient(err)
	}

	x := int16(uint16(m.buf[0])<<8 | uint16(m.buf[1]))
	z := int16(uint16(m.buf[2])<<8 | uint16(m.buf[3]))
	y := int16(uint16(m.buf[4])<<8 | uint16(m.buf[5]))
	if x == hmcOverflow || y == hmcOverflow || z == hmcOverflow {
		return Reading{}, core.Transient(errOverflow)
	}

	r := Reading{Kind: KindMagnetic, Raw: [3]int16{x, y, z}}
	for i, v := range r.Raw {
		r.MilliGauss[i] = int32(v) * 1000 / hmcCountsPerGauss
	}
	return r, nil
}
