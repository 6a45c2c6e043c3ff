package tasks

import (
	"tinyco/core"
	"tinyco/sensors"
)

// SensorPoll reads one sensor on a fixed interval through a bus guard.
//
// A failed read is logged and skipped; the next poll happens on the regular
// schedule. The failure streak is a saturating byte, so a sensor that never
// answers costs nothing beyond one warning.
type SensorPoll struct {
	sensor   sensors.Sensor
	guard    *core.BusGuard
	interval uint32
	log      *core.TaskLog

	started  bool
	next     core.Time
	streak   uint8
	polls    uint32
	failures uint32
	last     sensors.Reading
}

// NewSensorPoll returns a poll task. The sensor is configured from Init.
func NewSensorPoll(s sensors.Sensor, guard *core.BusGuard, intervalMS uint32, log *core.TaskLog) *SensorPoll {
	return &SensorPoll{sensor: s, guard: guard, interval: intervalMS, log: log}
}

// Init configures the sensor. Nothing else runs yet, so the guard is free.
func (p *SensorPoll) Init() error {
	lease, ok := p.guard.TryAcquire(p.sensor.Name())
	if !ok {
		return core.ErrBusy
	}
	defer lease.Release()
	return p.sensor.Configure(lease)
}

func (p *SensorPoll) Step(now core.Time) core.Wait {
	if !p.started {
		p.started = true
		p.next = now
	}
	if !now.Reached(p.next) {
		return core.SleepUntil(p.next)
	}

	lease, ok := p.guard.TryAcquire(p.sensor.Name())
	if !ok {
		// Keep the deadline; the poll is just late.
		return core.OnBus(p.guard)
	}
	r, err := p.sensor.Read(lease)
	lease.Release()

	p.polls++
	if err != nil {
		p.fail(err)
	} else {
		p.succeed(r)
	}

	p.next = p.next.Add(p.interval)
	if now.Reached(p.next) {
		p.next = now.Add(p.interval)
	}
	return core.SleepUntil(p.next)
}

func (p *SensorPoll) fail(err error) {
	p.failures++
	if p.streak == 0 {
		p.log.Warn("read failed: " + err.Error())
	}
	if p.streak < 0xFF {
		p.streak++
	}
}

func (p *SensorPoll) succeed(r sensors.Reading) {
	if p.streak > 0 {
		p.log.Info("recovered after " + core.Itoa(int(p.streak)) + " failed reads")
		p.streak = 0
	}
	p.last = r
	r.Report(p.log.Info)
}

// Polls returns how many reads were attempted.
func (p *SensorPoll) Polls() uint32 { return p.polls }

// Failures returns how many reads failed.
func (p *SensorPoll) Failures() uint32 { return p.failures }

// Streak returns the current run of consecutive failures, capped at 255.
func (p *SensorPoll) Streak() uint8 { return p.streak }

// Last returns the most recent good reading.
func (p *SensorPoll) Last() sensors.Reading { return p.last }
