package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tinyco/config"
)

// Scenario scripts one simulator run.
type Scenario struct {
	// Name identifies the scenario in output and golden files.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Config is an application config in the same form as a config file.
	// Missing keys take the defaults.
	Config yaml.Node `yaml:"config"`

	// DurationMS is the virtual time the run ends at.
	DurationMS uint32 `yaml:"duration_ms"`

	// Devices are attached to the I2C bus before the app starts.
	Devices []DeviceSpec `yaml:"devices,omitempty"`

	// ADC holds the initial channel values.
	ADC map[uint8]uint16 `yaml:"adc,omitempty"`

	// Events are applied in time order; events at the same time keep file
	// order.
	Events []Event `yaml:"events,omitempty"`
}

// DeviceSpec describes a register-file I2C device.
type DeviceSpec struct {
	Address   uint16         `yaml:"address"`
	Registers map[int][]int  `yaml:"registers,omitempty"`
	OnWrite   []WriteTrigger `yaml:"on_write,omitempty"`
}

// WriteTrigger loads registers when a value is written to a register.
type WriteTrigger struct {
	Register int           `yaml:"register"`
	Value    int           `yaml:"value"`
	Set      map[int][]int `yaml:"set"`
}

// Event is one stimulus. Exactly one of Pin, ADC, Fail or Turn is set.
type Event struct {
	At uint32 `yaml:"at"`

	// Pin drives an input to Level.
	Pin   *int  `yaml:"pin,omitempty"`
	Level *bool `yaml:"level,omitempty"`

	ADC  *ADCSample `yaml:"adc,omitempty"`
	Fail *Failure   `yaml:"fail,omitempty"`
	Turn *Turn      `yaml:"turn,omitempty"`
}

// ADCSample changes one channel's value.
type ADCSample struct {
	Channel uint8  `yaml:"channel"`
	Value   uint16 `yaml:"value"`
}

// Failure makes a target nack, or an ADC channel fail, Count times.
type Failure struct {
	Address *uint16 `yaml:"address,omitempty"`
	Channel *uint8  `yaml:"channel,omitempty"`
	Count   int     `yaml:"count"`
}

// Turn rotates the encoder on the configured rotary pins by Detents clicks,
// negative for counter-clockwise, one Gray code transition every StepMS.
type Turn struct {
	Detents int    `yaml:"detents"`
	StepMS  uint32 `yaml:"step_ms"`
}

// LoadScenario reads a scenario file, rejecting unknown fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.DurationMS == 0 {
		return fmt.Errorf("duration_ms is required")
	}
	for _, d := range s.Devices {
		for reg, data := range d.Registers {
			if err := checkBytes(reg, data); err != nil {
				return fmt.Errorf("device 0x%02X: %w", d.Address, err)
			}
		}
		for _, t := range d.OnWrite {
			if t.Register < 0 || t.Register > 0xFF || t.Value < 0 || t.Value > 0xFF {
				return fmt.Errorf("device 0x%02X: trigger %d=%d out of byte range", d.Address, t.Register, t.Value)
			}
			for reg, data := range t.Set {
				if err := checkBytes(reg, data); err != nil {
					return fmt.Errorf("device 0x%02X: %w", d.Address, err)
				}
			}
		}
	}
	for i, e := range s.Events {
		if err := e.validate(); err != nil {
			return fmt.Errorf("event %d at %d ms: %w", i, e.At, err)
		}
		if e.At > s.DurationMS {
			return fmt.Errorf("event %d at %d ms is after the end of the run", i, e.At)
		}
	}
	return nil
}

func (e *Event) validate() error {
	set := 0
	if e.Pin != nil {
		set++
		if e.Level == nil {
			return fmt.Errorf("pin event needs a level")
		}
	}
	if e.ADC != nil {
		set++
	}
	if e.Fail != nil {
		set++
		if (e.Fail.Address == nil) == (e.Fail.Channel == nil) {
			return fmt.Errorf("fail needs exactly one of address or channel")
		}
		if e.Fail.Count <= 0 {
			return fmt.Errorf("fail count must be positive")
		}
	}
	if e.Turn != nil {
		set++
		if e.Turn.Detents == 0 || e.Turn.StepMS == 0 {
			return fmt.Errorf("turn needs detents and step_ms")
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of pin, adc, fail or turn is required")
	}
	return nil
}

func checkBytes(reg int, data []int) error {
	if reg < 0 || reg > 0xFF {
		return fmt.Errorf("register %d out of range", reg)
	}
	for _, b := range data {
		if b < 0 || b > 0xFF {
			return fmt.Errorf("register 0x%02X: value %d is not a byte", reg, b)
		}
	}
	return nil
}

func toBytes(data []int) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = byte(b)
	}
	return out
}

// AppConfig builds the application config from the scenario's config node.
func (s *Scenario) AppConfig() (*config.Config, error) {
	if s.Config.Kind == 0 {
		c := config.Default()
		return c, c.Validate()
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config.Parse(data)
}
