package sim

import (
	"fmt"
	"sort"
	"strings"

	"tinyco/apps"
	"tinyco/config"
	"tinyco/core"
)

// Rig is the set of simulated peripherals an app runs against.
type Rig struct {
	Clock *core.ManualClock
	GPIO  *GPIO
	Bus   *Bus
	I2C   *I2C
	ADC   *ADC
}

func NewRig() *Rig {
	clock := core.NewManualClock(0)
	bus := NewBus()
	return &Rig{
		Clock: clock,
		GPIO:  NewGPIO(clock),
		Bus:   bus,
		I2C:   NewI2C(bus),
		ADC:   NewADC(),
	}
}

// Env returns an apps.Env over the rig, logging through logger.
func (r *Rig) Env(logger *core.Logger) apps.Env {
	return apps.Env{
		Clock:  r.Clock,
		GPIO:   r.GPIO,
		I2C:    r.I2C,
		ADC:    r.ADC,
		Logger: logger,
	}
}

// Result is the outcome of one run.
type Result struct {
	Scenario string
	App      *apps.App
	Rig      *Rig
	Records  []core.Record

	// InitErr is set when a task failed to initialize; no task ran.
	InitErr error
}

// Transcript renders the records one per line.
func (r *Result) Transcript() string {
	var sb strings.Builder
	for _, rec := range r.Records {
		sb.WriteString(core.FormatRecord(rec))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines returns the text logged under task.
func (r *Result) Lines(task string) []string {
	var out []string
	for _, rec := range r.Records {
		if rec.Task == task {
			out = append(out, rec.Text)
		}
	}
	return out
}

type step struct {
	at    core.Time
	seq   int
	event Event
}

// Run builds the scenario's app on a fresh rig and plays its events. A task
// failing Init is reported in Result.InitErr, not as an error.
func Run(s *Scenario) (*Result, error) {
	cfg, err := s.AppConfig()
	if err != nil {
		return nil, err
	}

	rig := NewRig()
	for _, d := range s.Devices {
		dev := rig.Bus.Add(d.Address)
		for reg, data := range d.Registers {
			dev.SetRegisters(uint8(reg), toBytes(data))
		}
		for _, t := range d.OnWrite {
			set := make(map[uint8][]byte, len(t.Set))
			for reg, data := range t.Set {
				set[uint8(reg)] = toBytes(data)
			}
			dev.OnWrite(uint8(t.Register), uint8(t.Value), set)
		}
	}
	for ch, v := range s.ADC {
		rig.ADC.Set(core.ADCChannelID(ch), core.ADCValue(v))
	}

	res := &Result{Scenario: s.Name, Rig: rig}
	logger := core.NewLogger(rig.Clock, func(rec core.Record) {
		res.Records = append(res.Records, rec)
	})
	app, err := apps.Build(cfg, rig.Env(logger))
	if err != nil {
		return nil, err
	}
	res.App = app

	if err := app.Sched.Start(); err != nil {
		res.InitErr = err
		return res, nil
	}

	steps := make([]step, 0, len(s.Events))
	for i, e := range s.Events {
		steps = append(steps, step{at: core.Time(e.At), seq: i, event: e})
	}
	seq := len(steps)

	for len(steps) > 0 {
		sortSteps(steps)
		st := steps[0]
		steps = steps[1:]

		if err := app.Sched.RunUntil(st.at); err != nil {
			return res, err
		}
		more, err := rig.apply(st, cfg)
		if err != nil {
			return res, fmt.Errorf("event at %d ms: %w", st.at, err)
		}
		for _, m := range more {
			m.seq = seq
			seq++
			steps = append(steps, m)
		}
	}

	if err := app.Sched.RunUntil(core.Time(s.DurationMS)); err != nil {
		return res, err
	}
	return res, nil
}

func sortSteps(steps []step) {
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].at != steps[j].at {
			return steps[i].at.Before(steps[j].at)
		}
		return steps[i].seq < steps[j].seq
	})
}

// apply performs one event. A turn expands into the pin events that follow
// it, which are returned for scheduling.
func (r *Rig) apply(st step, cfg *config.Config) ([]step, error) {
	e := st.event
	switch {
	case e.Pin != nil:
		return nil, r.GPIO.Drive(core.GPIOPin(*e.Pin), *e.Level)
	case e.ADC != nil:
		r.ADC.Set(core.ADCChannelID(e.ADC.Channel), core.ADCValue(e.ADC.Value))
	case e.Fail != nil && e.Fail.Address != nil:
		return nil, r.Bus.Fail(*e.Fail.Address, e.Fail.Count)
	case e.Fail != nil:
		r.ADC.Fail(core.ADCChannelID(*e.Fail.Channel), e.Fail.Count)
	case e.Turn != nil:
		return r.turn(st.at, e.Turn, cfg.Pins.RotaryA, cfg.Pins.RotaryB)
	}
	return nil, nil
}

// grayCycle is the clockwise order of A<<1|B.
var grayCycle = [4]uint8{3, 1, 0, 2}

func (r *Rig) turn(at core.Time, t *Turn, pinA, pinB int) ([]step, error) {
	a, okA := r.GPIO.Level(core.GPIOPin(pinA))
	b, okB := r.GPIO.Level(core.GPIOPin(pinB))
	if !okA || !okB {
		return nil, fmt.Errorf("turn: rotary pins %d and %d are not claimed", pinA, pinB)
	}
	state := uint8(0)
	if a {
		state |= 2
	}
	if b {
		state |= 1
	}
	pos := 0
	for i, s := range grayCycle {
		if s == state {
			pos = i
		}
	}

	n, dir := t.Detents*4, 1
	if n < 0 {
		n, dir = -n, 3
	}
	var out []step
	for i := 0; i < n; i++ {
		pos = (pos + dir) % 4
		next := grayCycle[pos]
		pin, level := pinB, next&1 != 0
		if (next^state)&2 != 0 {
			pin, level = pinA, next&2 != 0
		}
		state = next
		p, l := pin, level
		out = append(out, step{
			at:    at.Add(uint32(i) * t.StepMS),
			event: Event{At: uint32(at) + uint32(i)*t.StepMS, Pin: &p, Level: &l},
		})
	}
	return out, nil
}
