package sensors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers/tester"

	"tinyco/core"
)

func lease(t *testing.T, bus *tester.I2CBus) core.Lease {
	t.Helper()
	g := core.NewBusGuard(bus, nil)
	l, ok := g.TryAcquire(t.Name())
	require.True(t, ok)
	t.Cleanup(l.Release)
	return l
}

func putBE(regs []uint8, v int16) {
	regs[0] = uint8(uint16(v) >> 8)
	regs[1] = uint8(v)
}

func TestHMC5883LConfigureAndRead(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(HMC5883LAddress)
	copy(dev.Registers[hmcIdentA:], "H43")
	putBE(dev.Registers[0x03:], 1090) // X
	putBE(dev.Registers[0x05:], -545) // Z
	putBE(dev.Registers[0x07:], 0)    // Y

	m := NewHMC5883L(0)
	l := lease(t, bus)
	require.NoError(t, m.Configure(l))
	assert.Equal(t, uint8(0x70), dev.Registers[hmcConfigA])
	assert.Equal(t, uint8(0x20), dev.Registers[hmcConfigB])
	assert.Equal(t, uint8(0x00), dev.Registers[hmcMode])

	r, err := m.Read(l)
	require.NoError(t, err)
	assert.Equal(t, [3]int16{1090, 0, -545}, r.Raw)
	assert.Equal(t, [3]int32{1000, 0, -500}, r.MilliGauss)

	var lines []string
	r.Report(func(s string) { lines = append(lines, s) })
	assert.Equal(t, []string{"x=1.000  y=0.000  z=-0.500"}, lines)
}

func TestHMC5883LRejectsWrongIdentity(t *testing.T) {
	bus := tester.NewI2CBus(t)
	bus.NewDevice(HMC5883LAddress)

	err := NewHMC5883L(0).Configure(lease(t, bus))
	assert.ErrorIs(t, err, core.ErrNoDevice)
}

func TestHMC5883LReadFailureIsTransient(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(HMC5883LAddress)
	dev.Err = errors.New("nack")

	_, err := NewHMC5883L(0).Read(lease(t, bus))
	assert.True(t, core.IsTransient(err))
}

func TestHMC5883LOverflow(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(HMC5883LAddress)
	putBE(dev.Registers[0x03:], hmcOverflow)

	_, err := NewHMC5883L(0).Read(lease(t, bus))
	assert.ErrorIs(t, err, errOverflow)
}

// Datasheet example coefficients, AC1 through MD. UT=27898 decodes to 15.0 C.
var bmp180Calibration = []uint16{408, 0xFFB8, 0xC7D1, 32741, 32757, 23153, 6190, 4, 0x8000, 0xDDF9, 2868}

func newBMP180Device(t *testing.T, bus *tester.I2CBus) *tester.I2CDevice8 {
	dev := bus.NewDevice(0x77)
	dev.Registers[0xD0] = 0x55
	for i, v := range bmp180Calibration {
		putBE(dev.Registers[0xAA+2*i:], int16(v))
	}
	putBE(dev.Registers[0xF6:], 27898)
	return dev
}

func TestBMP180ReadsTemperature(t *testing.T) {
	bus := tester.NewI2CBus(t)
	newBMP180Device(t, bus)

	s := NewBMP180(0)
	l := lease(t, bus)
	require.NoError(t, s.Configure(l))

	r, err := s.Read(l)
	require.NoError(t, err)
	assert.Equal(t, KindPressure, r.Kind)
	assert.Equal(t, int32(15000), r.TempMilliC)

	var lines []string
	r.Report(func(s string) { lines = append(lines, s) })
	require.Len(t, lines, 2)
	assert.Equal(t, "temp: 15.0 *C", lines[0])
}

func TestBMP180MissingChip(t *testing.T) {
	bus := tester.NewI2CBus(t)
	newBMP180Device(t, bus).Registers[0xD0] = 0x00

	err := NewBMP180(0).Configure(lease(t, bus))
	assert.ErrorIs(t, err, core.ErrNoDevice)
}

func TestBMP180NeedsLease(t *testing.T) {
	bus := tester.NewI2CBus(t)
	newBMP180Device(t, bus)
	g := core.NewBusGuard(bus, nil)
	l, _ := g.TryAcquire("bmp180")
	s := NewBMP180(0)
	require.NoError(t, s.Configure(l))
	l.Release()

	_, err := s.Read(l)
	assert.ErrorIs(t, err, core.ErrBusNotHeld)
}
