package tasks

import (
	"tinyco/core"
)

// JoystickPeriodMS is the sampling period.
const JoystickPeriodMS = 10

// JoystickConfig names the joystick's inputs.
type JoystickConfig struct {
	X, Y      core.ADCChannelID
	Button    core.InputPin
	ActiveLow bool
	Threshold core.ADCValue
}

// Joystick samples two axes and a push button every 10 ms and reports only
// when an axis moved past the threshold or the button was freshly pressed.
type Joystick struct {
	adc core.ADCDriver
	cfg JoystickConfig
	log *core.TaskLog

	x, y    Hysteresis
	pressed bool
	first   bool
	errors  uint32
	reports uint32
}

// NewJoystick returns a joystick task. The first cycle always reports.
func NewJoystick(adc core.ADCDriver, cfg JoystickConfig, log *core.TaskLog) *Joystick {
	if cfg.Threshold == 0 {
		cfg.Threshold = JoystickThreshold
	}
	return &Joystick{
		adc:   adc,
		cfg:   cfg,
		log:   log,
		x:     NewHysteresis(0, cfg.Threshold),
		y:     NewHysteresis(0, cfg.Threshold),
		first: true,
	}
}

// Init prepares both ADC channels.
func (j *Joystick) Init() error {
	if err := j.adc.ConfigureChannel(j.cfg.X); err != nil {
		return err
	}
	return j.adc.ConfigureChannel(j.cfg.Y)
}

func (j *Joystick) Step(now core.Time) core.Wait {
	vx, err := j.adc.ReadRaw(j.cfg.X)
	if err != nil {
		j.errors++
		return core.SleepFor(now, JoystickPeriodMS)
	}
	vy, err := j.adc.ReadRaw(j.cfg.Y)
	if err != nil {
		j.errors++
		return core.SleepFor(now, JoystickPeriodMS)
	}

	report := j.first
	j.first = false
	if j.x.Update(vx) {
		report = true
	}
	if j.y.Update(vy) {
		report = true
	}

	if j.cfg.Button != nil {
		pressed := j.cfg.Button.Get() != j.cfg.ActiveLow
		if pressed && !j.pressed {
			j.log.Info("Button Pressed")
			report = true
		}
		j.pressed = pressed
	}

	if report {
		j.reports++
		j.log.Info("X: " + core.Itoa(int(vx)) + " Y: " + core.Itoa(int(vy)))
	}
	return core.SleepFor(now, JoystickPeriodMS)
}

// Errors returns how many cycles were skipped on an ADC error.
func (j *Joystick) Errors() uint32 { return j.errors }

// Reports returns how many axis reports were emitted.
func (j *Joystick) Reports() uint32 { return j.reports }
