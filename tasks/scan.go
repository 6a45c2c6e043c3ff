package tasks

import (
	"tinyco/core"
)

// ScanPaceMS separates consecutive probes.
const ScanPaceMS = 10

// BusScan probes every non-reserved 7-bit address once and then finishes.
// It holds the guard for one probe at a time, so other bus users interleave
// with the sweep.
type BusScan struct {
	guard *core.BusGuard
	log   *core.TaskLog

	started bool
	addr    core.I2CAddress
	found   []uint8
	done    bool
}

func NewBusScan(guard *core.BusGuard, log *core.TaskLog) *BusScan {
	return &BusScan{guard: guard, log: log, addr: core.I2CFirstAddress}
}

func (s *BusScan) Step(now core.Time) core.Wait {
	if !s.started {
		s.started = true
		s.log.Info("Starting I2C scan...")
	}

	lease, ok := s.guard.TryAcquire("scan")
	if !ok {
		return core.OnBus(s.guard)
	}
	err := lease.Probe(uint16(s.addr))
	lease.Release()
	if err == nil {
		s.found = append(s.found, uint8(s.addr))
		s.log.Info("Found device at " + core.Hex8(uint8(s.addr)))
	}

	if s.addr == core.I2CLastAddress {
		s.done = true
		s.log.Info("Scan complete.")
		s.log.Info(s.summary())
		return core.Done()
	}
	s.addr++
	return core.SleepFor(now, ScanPaceMS)
}

func (s *BusScan) summary() string {
	if len(s.found) == 0 {
		return "no devices found"
	}
	text := core.Itoa(len(s.found)) + " device(s):"
	for _, a := range s.found {
		text += " " + core.Hex8(a)
	}
	return text
}

// Found returns the responding addresses in probe order.
func (s *BusScan) Found() []uint8 {
	return s.found
}

// Complete reports whether the sweep has finished.
func (s *BusScan) Complete() bool {
	return s.done
}
