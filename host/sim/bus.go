package sim

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"tinyco/core"
)

// NackError is returned for a transaction nobody acknowledged.
type NackError struct {
	Addr uint16
}

func (e *NackError) Error() string {
	return "nack at " + core.Hex8(uint8(e.Addr))
}

// Device is a register-file I2C target. The first written byte sets the
// register pointer, the rest are stored from there; reads continue from the
// pointer. Both auto-increment.
type Device struct {
	Addr uint16

	regs     [256]byte
	ptr      uint8
	fail     int
	triggers []trigger
}

type trigger struct {
	reg, value uint8
	set        map[uint8][]byte
}

// SetRegisters stores data starting at reg.
func (d *Device) SetRegisters(reg uint8, data []byte) {
	for i, b := range data {
		d.regs[uint8(int(reg)+i)] = b
	}
}

// Registers returns n bytes starting at reg.
func (d *Device) Registers(reg uint8, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = d.regs[uint8(int(reg)+i)]
	}
	return out
}

// OnWrite loads set into the register file whenever value is written to
// reg. It stands in for a conversion that completes instantly.
func (d *Device) OnWrite(reg, value uint8, set map[uint8][]byte) {
	d.triggers = append(d.triggers, trigger{reg: reg, value: value, set: set})
}

func (d *Device) write(data []byte) {
	for _, b := range data {
		d.regs[d.ptr] = b
		for _, t := range d.triggers {
			if t.reg == d.ptr && t.value == b {
				for r, v := range t.set {
					d.SetRegisters(r, v)
				}
			}
		}
		d.ptr++
	}
}

func (d *Device) read(data []byte) {
	for i := range data {
		data[i] = d.regs[d.ptr]
		d.ptr++
	}
}

// Bus is a drivers.I2C with attached Devices.
type Bus struct {
	mu      sync.Mutex
	devices map[uint16]*Device
	txs     uint32
}

func NewBus() *Bus {
	return &Bus{devices: make(map[uint16]*Device)}
}

// Add attaches a device at addr, replacing any already there.
func (b *Bus) Add(addr uint16) *Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := &Device{Addr: addr}
	b.devices[addr] = d
	return d
}

// Device returns the device at addr.
func (b *Bus) Device(addr uint16) (*Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[addr]
	return d, ok
}

// Fail makes the next n transactions to addr go unacknowledged.
func (b *Bus) Fail(addr uint16, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[addr]
	if !ok {
		return fmt.Errorf("no device at 0x%02X", addr)
	}
	d.fail += n
	return nil
}

// Transactions returns how many transactions reached the bus.
func (b *Bus) Transactions() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++

	d, ok := b.devices[addr]
	if !ok {
		return &NackError{Addr: addr}
	}
	if d.fail > 0 {
		d.fail--
		return &NackError{Addr: addr}
	}
	if len(w) > 0 {
		d.ptr = w[0]
		d.write(w[1:])
	}
	if len(r) > 0 {
		d.read(r)
	}
	return nil
}

// I2C implements core.I2CDriver with one simulated bus, served under
// whichever bus id is configured.
type I2C struct {
	bus        *Bus
	configured bool
	id         core.I2CBusID
	hz         uint32
}

func NewI2C(bus *Bus) *I2C {
	return &I2C{bus: bus}
}

func (i *I2C) ConfigureBus(id core.I2CBusID, frequencyHz uint32) error {
	if frequencyHz == 0 {
		return fmt.Errorf("i2c%d: zero frequency", id)
	}
	i.configured = true
	i.id = id
	i.hz = frequencyHz
	return nil
}

func (i *I2C) Bus(id core.I2CBusID) (drivers.I2C, error) {
	if !i.configured || id != i.id {
		return nil, fmt.Errorf("i2c%d: not configured", id)
	}
	return i.bus, nil
}
