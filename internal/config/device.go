package config

import (
	"fmt"

	"github.com/google/uuid"
)

// DeviceType represents the protocol domain a device speaks
type DeviceType string

const (
	DeviceTypeMidi DeviceType = "midi" // device driven by MIDI commands
	DeviceTypeOsc  DeviceType = "osc"  // device driven by OSC messages
)

// CommandType discriminates the Command variants
type CommandType string

const (
	CommandProgramChange CommandType = "program_change"
	CommandControlChange CommandType = "control_change"
	CommandOsc           CommandType = "osc"
)

// Command is a single outbound instruction. Type selects which fields are
// meaningful: program_change uses Channel/Program, control_change uses
// Channel/Controller/Value, osc uses Address/Args.
type Command struct {
	Type       CommandType `json:"type"`
	Channel    uint8       `json:"channel,omitempty"`
	Program    uint8       `json:"program,omitempty"`
	Controller uint8       `json:"controller,omitempty"`
	Value      uint8       `json:"value,omitempty"`
	Address    string      `json:"address,omitempty"`
	Args       []OscArg    `json:"args,omitempty"`
}

// OscArgType discriminates the OscArg variants
type OscArgType string

const (
	OscArgInt        OscArgType = "int"
	OscArgFloat      OscArgType = "float"
	OscArgString     OscArgType = "string"
	OscArgBool       OscArgType = "bool"
	OscArgNormalized OscArgType = "normalized"
)

// OscArg is one argument of an OSC command. Numeric variants (int, float,
// normalized) carry their value in Value; normalized additionally carries the
// Min/Max range it is mapped through before transmission.
type OscArg struct {
	Type   OscArgType `json:"type"`
	Value  float64    `json:"value,omitempty"`
	String string     `json:"string,omitempty"`
	Bool   bool       `json:"bool,omitempty"`
	Min    float64    `json:"min,omitempty"`
	Max    float64    `json:"max,omitempty"`
}

// TempoSpecType discriminates the TempoSpec variants
type TempoSpecType string

const (
	// TempoTap replays the command list four times at quarter-note spacing
	TempoTap TempoSpecType = "tap_tempo"
	// TempoRaw sends the command list once with a computed tempo scalar
	TempoRaw TempoSpecType = "raw_tempo"
)

// TempoDataType selects the scalar a raw_tempo spec delivers
type TempoDataType string

const (
	TempoDataTempo TempoDataType = "tempo" // BPM value as-is
	TempoDataTime  TempoDataType = "time"  // quarter-note duration in ms
)

// TempoSpec describes how a device receives tempo updates
type TempoSpec struct {
	Type     TempoSpecType `json:"type"`
	Commands []Command     `json:"commands"`
	DataType TempoDataType `json:"data_type,omitempty"` // raw_tempo only
}

// Program is a numbered command list on a device
type Program struct {
	Number   uint8     `json:"number"` // 0-127
	Name     string    `json:"name"`
	Commands []Command `json:"commands"`
}

// Device describes one controllable device and its programs
type Device struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      DeviceType `json:"type"`
	Programs  []Program  `json:"programs"`
	TempoSpec *TempoSpec `json:"tempo_spec,omitempty"`
}

// NewDevice creates a device with a generated ID
func NewDevice(name string, deviceType DeviceType) Device {
	return Device{
		ID:   uuid.New().String(),
		Name: name,
		Type: deviceType,
	}
}

// Program returns the program with the given number, or nil if the device
// has none
func (d *Device) Program(number uint8) *Program {
	for i := range d.Programs {
		if d.Programs[i].Number == number {
			return &d.Programs[i]
		}
	}
	return nil
}

// DeviceConfig is the device table of a configuration snapshot
type DeviceConfig struct {
	Devices map[string]Device `json:"devices"`
}

// GetDevice returns the device with the given ID, or nil if unknown
func (c *DeviceConfig) GetDevice(id string) *Device {
	if d, ok := c.Devices[id]; ok {
		return &d
	}
	return nil
}

// Validate checks the invariants that are enforceable at load time:
// program numbers unique per device, 7-bit fields in range, known
// discriminator values. Cross-domain command/destination pairs are legal
// configuration and diagnosed at execution time instead.
func (c *DeviceConfig) Validate() error {
	for id, device := range c.Devices {
		if device.Type != DeviceTypeMidi && device.Type != DeviceTypeOsc {
			return fmt.Errorf("device %q: unknown device type %q", id, device.Type)
		}
		seen := make(map[uint8]bool, len(device.Programs))
		for _, program := range device.Programs {
			if program.Number > 127 {
				return fmt.Errorf("device %q: program number %d out of range", id, program.Number)
			}
			if seen[program.Number] {
				return fmt.Errorf("device %q: duplicate program number %d", id, program.Number)
			}
			seen[program.Number] = true
			for _, cmd := range program.Commands {
				if err := cmd.validate(); err != nil {
					return fmt.Errorf("device %q program %d: %w", id, program.Number, err)
				}
			}
		}
		if spec := device.TempoSpec; spec != nil {
			if spec.Type != TempoTap && spec.Type != TempoRaw {
				return fmt.Errorf("device %q: unknown tempo spec type %q", id, spec.Type)
			}
			if spec.Type == TempoRaw && spec.DataType != TempoDataTempo && spec.DataType != TempoDataTime {
				return fmt.Errorf("device %q: unknown tempo data type %q", id, spec.DataType)
			}
			for _, cmd := range spec.Commands {
				if err := cmd.validate(); err != nil {
					return fmt.Errorf("device %q tempo spec: %w", id, err)
				}
			}
		}
	}
	return nil
}

func (c *Command) validate() error {
	switch c.Type {
	case CommandProgramChange:
		if c.Channel > 127 || c.Program > 127 {
			return fmt.Errorf("program change field out of range")
		}
	case CommandControlChange:
		if c.Channel > 127 || c.Controller > 127 || c.Value > 127 {
			return fmt.Errorf("control change field out of range")
		}
	case CommandOsc:
		if c.Address == "" {
			return fmt.Errorf("osc command missing address")
		}
		for _, arg := range c.Args {
			switch arg.Type {
			case OscArgInt, OscArgFloat, OscArgString, OscArgBool, OscArgNormalized:
			default:
				return fmt.Errorf("unknown osc arg type %q", arg.Type)
			}
		}
	default:
		return fmt.Errorf("unknown command type %q", c.Type)
	}
	return nil
}
