//go:build rp2040 || rp2350

package pio

import (
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"tinyco/core"
)

// samplerProgram reads both encoder pins in a loop and pushes them when they
// differ from the last pushed value, kept in X.
//
//	0: mov isr, null
//	1: in pins, 2
//	2: mov y, isr
//	3: jmp x!=y, 5
//	4: jmp 0
//	5: mov x, y
//	6: push noblock
func samplerProgram() []uint16 {
	return []uint16{
		// .wrap_target
		rp2pio.EncodeMov(rp2pio.SrcDestISR, rp2pio.SrcDestNull),
		rp2pio.EncodeIn(rp2pio.SrcDestPins, 2),
		rp2pio.EncodeMov(rp2pio.SrcDestY, rp2pio.SrcDestISR),
		rp2pio.EncodeJmp(5, rp2pio.JmpXNotEqualY),
		rp2pio.EncodeJmp(0, rp2pio.JmpAlways),
		rp2pio.EncodeMov(rp2pio.SrcDestX, rp2pio.SrcDestY),
		rp2pio.EncodePush(false, false),
		// .wrap
	}
}

// Absolute jumps above need the program at offset 0.
const samplerOrigin = 0

// 125 MHz / 125 gives 1 MHz, a sample every 5 µs.
const samplerClkDiv = 125

// How long the drain loop sleeps when the RX FIFO is empty.
const drainInterval = 500 * time.Microsecond

// Sampler runs the sampling program on one state machine and feeds Lines
// from its RX FIFO.
type Sampler struct {
	pio   *rp2pio.PIO
	sm    rp2pio.StateMachine
	lines *Lines
}

// NewSampler picks PIO0 or PIO1 and a state machine 0-3.
func NewSampler(pioNum, smNum uint8, lines *Lines) *Sampler {
	hw := rp2pio.PIO0
	if pioNum != 0 {
		hw = rp2pio.PIO1
	}
	return &Sampler{pio: hw, sm: hw.StateMachine(smNum), lines: lines}
}

// Start loads the program, primes Lines with the current levels and starts
// draining. Call it after the app has claimed the pins.
func (s *Sampler) Start() error {
	s.sm.TryClaim()

	program := samplerProgram()
	offset, err := s.pio.AddProgram(program, samplerOrigin)
	if err != nil {
		return err
	}

	first := machine.Pin(s.lines.First())
	pins := [2]machine.Pin{first, first + 1}
	for i, p := range pins {
		p.Configure(machine.PinConfig{Mode: pinMode(s.lines.Pull(i))})
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(first)
	cfg.SetInShift(false, false, 32)
	cfg.SetFIFOJoin(rp2pio.FifoJoinRx)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(samplerClkDiv, 0)

	s.sm.Init(offset, cfg)

	var now uint32
	if pins[0].Get() {
		now |= 1
	}
	if pins[1].Get() {
		now |= 2
	}
	s.lines.Prime(now)
	s.sm.SetX(now)

	s.sm.SetEnabled(true)
	go s.drain()
	return nil
}

func (s *Sampler) drain() {
	for {
		for !s.sm.IsRxFIFOEmpty() {
			s.lines.Feed(s.sm.RxGet())
		}
		time.Sleep(drainInterval)
	}
}

func pinMode(p core.Pull) machine.PinMode {
	switch p {
	case core.PullUp:
		return machine.PinInputPullup
	case core.PullDown:
		return machine.PinInputPulldown
	}
	return machine.PinInput
}
