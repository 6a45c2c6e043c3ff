package core

import (
	"context"
	"sync"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

// BusGuard owns one physical bus and hands it out to one holder at a time.
// The bus handle is moved in at construction; after that the only way to
// reach it is through a Lease.
//
// Holders acquire, run their bounded transaction and release before they
// suspend. A task that finds the guard busy returns OnBus(g) and retries
// when it is next run.
type BusGuard struct {
	bus    drivers.I2C
	sem    chan struct{}
	gen    atomic.Uint32
	active atomic.Uint32
	notify func()

	mu     sync.Mutex
	holder string

	contended atomic.Uint32
	probe     [1]byte
}

// NewBusGuard wraps bus. notify, if not nil, runs after every release so an
// idle scheduler re-evaluates tasks waiting on the bus.
func NewBusGuard(bus drivers.I2C, notify func()) *BusGuard {
	return &BusGuard{
		bus:    bus,
		sem:    make(chan struct{}, 1),
		notify: notify,
	}
}

// TryAcquire takes the guard if it is free.
func (g *BusGuard) TryAcquire(owner string) (Lease, bool) {
	select {
	case g.sem <- struct{}{}:
		return g.grant(owner), true
	default:
		g.contended.Add(1)
		return Lease{}, false
	}
}

// Acquire blocks until the guard is free or ctx is done. Only code running
// outside the cooperative scheduler may block; tasks use TryAcquire.
func (g *BusGuard) Acquire(ctx context.Context, owner string) (Lease, error) {
	select {
	case g.sem <- struct{}{}:
		return g.grant(owner), nil
	case <-ctx.Done():
		return Lease{}, ctx.Err()
	}
}

func (g *BusGuard) grant(owner string) Lease {
	gen := g.gen.Add(1)
	if gen == 0 {
		gen = g.gen.Add(1)
	}
	g.mu.Lock()
	g.holder = owner
	g.mu.Unlock()
	g.active.Store(gen)
	return Lease{g: g, gen: gen}
}

// Busy reports whether the guard has a holder.
func (g *BusGuard) Busy() bool {
	return len(g.sem) == 1
}

// Holder returns the owner name of the current lease, or "".
func (g *BusGuard) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder
}

// Contended returns how many TryAcquire calls found the guard busy.
func (g *BusGuard) Contended() uint32 {
	return g.contended.Load()
}

// Lease is proof of holding a BusGuard. It implements drivers.I2C, so a
// driver can be handed the lease directly for one transaction. Once released,
// every copy of the lease fails with ErrBusNotHeld.
type Lease struct {
	g   *BusGuard
	gen uint32
}

// Held reports whether the lease is still the current one.
func (l Lease) Held() bool {
	return l.g != nil && l.g.active.Load() == l.gen
}

// Tx runs one bus transaction: write w, then read len(r) bytes.
func (l Lease) Tx(addr uint16, w, r []byte) error {
	if !l.Held() {
		return ErrBusNotHeld
	}
	return l.g.bus.Tx(addr, w, r)
}

// Transact writes w to addr and returns readLen bytes read back.
func (l Lease) Transact(addr uint16, w []byte, readLen int) ([]byte, error) {
	r := make([]byte, readLen)
	if err := l.Tx(addr, w, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Probe issues a one byte read at addr. A nil error means the device acked.
func (l Lease) Probe(addr uint16) error {
	if !l.Held() {
		return ErrBusNotHeld
	}
	return l.g.bus.Tx(addr, nil, l.g.probe[:])
}

// Release returns the bus. Releasing a stale lease does nothing.
func (l Lease) Release() {
	if l.g == nil || !l.g.active.CompareAndSwap(l.gen, 0) {
		return
	}
	l.g.mu.Lock()
	l.g.holder = ""
	l.g.mu.Unlock()
	<-l.g.sem
	if l.g.notify != nil {
		l.g.notify()
	}
}

// BusRef is a drivers.I2C that forwards to whichever lease is attached.
// Drivers that keep their bus for life are bound to a BusRef once at startup
// and can then only talk while their task holds the guard.
type BusRef struct {
	lease Lease
}

// Attach routes transactions through l.
func (r *BusRef) Attach(l Lease) {
	r.lease = l
}

// Detach drops the lease; later transactions fail with ErrBusNotHeld.
func (r *BusRef) Detach() {
	r.lease = Lease{}
}

func (r *BusRef) Tx(addr uint16, w, rd []byte) error {
	return r.lease.Tx(addr, w, rd)
}
