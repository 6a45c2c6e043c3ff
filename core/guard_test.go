package core

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus logs the address of every transaction in arrival order.
type recordingBus struct {
	mu    sync.Mutex
	addrs []uint16
	err   error
}

func (b *recordingBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs = append(b.addrs, addr)
	return b.err
}

func TestBusGuardSingleHolder(t *testing.T) {
	g := NewBusGuard(&recordingBus{}, nil)

	lease, ok := g.TryAcquire("a")
	require.True(t, ok)
	assert.True(t, g.Busy())
	assert.Equal(t, "a", g.Holder())

	_, ok = g.TryAcquire("b")
	assert.False(t, ok)
	assert.Equal(t, uint32(1), g.Contended())

	lease.Release()
	assert.False(t, g.Busy())
	assert.Equal(t, "", g.Holder())

	_, ok = g.TryAcquire("b")
	assert.True(t, ok)
}

func TestLeaseUnusableAfterRelease(t *testing.T) {
	bus := &recordingBus{}
	g := NewBusGuard(bus, nil)

	first, ok := g.TryAcquire("first")
	require.True(t, ok)
	require.NoError(t, first.Tx(0x1E, []byte{0x03}, make([]byte, 6)))
	first.Release()

	assert.ErrorIs(t, first.Tx(0x1E, nil, nil), ErrBusNotHeld)
	assert.ErrorIs(t, first.Probe(0x1E), ErrBusNotHeld)
	_, err := first.Transact(0x1E, []byte{0x03}, 6)
	assert.ErrorIs(t, err, ErrBusNotHeld)

	second, ok := g.TryAcquire("second")
	require.True(t, ok)
	// A stale copy neither works nor frees the new holder's lease.
	assert.ErrorIs(t, first.Tx(0x1E, nil, nil), ErrBusNotHeld)
	first.Release()
	assert.True(t, g.Busy())
	assert.True(t, second.Held())

	second.Release()
	second.Release()
	assert.False(t, g.Busy())
	assert.Equal(t, []uint16{0x1E}, bus.addrs)
}

func TestZeroLeaseIsNotHeld(t *testing.T) {
	var l Lease
	assert.False(t, l.Held())
	assert.ErrorIs(t, l.Tx(0x10, nil, nil), ErrBusNotHeld)
	l.Release()
}

func TestReleaseNotifies(t *testing.T) {
	notified := 0
	g := NewBusGuard(&recordingBus{}, func() { notified++ })
	lease, _ := g.TryAcquire("x")
	lease.Release()
	lease.Release()
	assert.Equal(t, 1, notified)
}

func TestProbeReportsBusError(t *testing.T) {
	nack := errors.New("nack")
	g := NewBusGuard(&recordingBus{err: nack}, nil)
	lease, _ := g.TryAcquire("scan")
	defer lease.Release()
	assert.ErrorIs(t, lease.Probe(0x42), nack)
}

func TestBusRefFollowsAttachedLease(t *testing.T) {
	bus := &recordingBus{}
	g := NewBusGuard(bus, nil)
	var ref BusRef

	assert.ErrorIs(t, ref.Tx(0x77, nil, nil), ErrBusNotHeld)

	lease, _ := g.TryAcquire("bmp")
	ref.Attach(lease)
	require.NoError(t, ref.Tx(0x77, []byte{0xD0}, make([]byte, 1)))
	ref.Detach()
	lease.Release()

	assert.ErrorIs(t, ref.Tx(0x77, nil, nil), ErrBusNotHeld)
	assert.Equal(t, []uint16{0x77}, bus.addrs)
}

func TestAcquireHonoursContext(t *testing.T) {
	g := NewBusGuard(&recordingBus{}, nil)
	held, _ := g.TryAcquire("holder")
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Acquire(ctx, "waiter")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBusGuardTransactionsNeverInterleave(t *testing.T) {
	const (
		workers = 4
		rounds  = 50
		perTx   = 3
	)
	bus := &recordingBus{}
	g := NewBusGuard(bus, nil)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(addr uint16) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				lease, err := g.Acquire(context.Background(), "worker")
				if err != nil {
					t.Error(err)
					return
				}
				for j := 0; j < perTx; j++ {
					_ = lease.Tx(addr, []byte{byte(j)}, nil)
					runtime.Gosched()
				}
				lease.Release()
			}
		}(uint16(0x10 + w))
	}
	wg.Wait()

	require.Len(t, bus.addrs, workers*rounds*perTx)
	for i := 0; i < len(bus.addrs); i += perTx {
		for j := 1; j < perTx; j++ {
			require.Equal(t, bus.addrs[i], bus.addrs[i+j], "transaction at %d interleaved", i)
		}
	}
}
