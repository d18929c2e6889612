package config

import (
	"fmt"

	"github.com/google/uuid"
)

// DestinationType discriminates the Destination variants
type DestinationType string

const (
	DestinationMidi DestinationType = "midi_session"
	DestinationOsc  DestinationType = "osc"
)

// Destination names where a mapping's commands are delivered. Midi sessions
// and OSC destinations are both referenced by name and resolved against the
// session table or the osc_destinations map at send time.
type Destination struct {
	Type            DestinationType `json:"type"`
	SessionName     string          `json:"session_name,omitempty"`
	DestinationName string          `json:"destination_name,omitempty"`
}

// MidiSession binds a session name to system MIDI ports. OutPort is where
// commands addressed to the session are sent; InPort, when set, is listened
// to for inbound program changes.
type MidiSession struct {
	Name    string `json:"name"`
	OutPort string `json:"out_port"`
	InPort  string `json:"in_port,omitempty"`
}

// OscDestination is a named host:port pair for outbound OSC
type OscDestination struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// OscSource is a UDP port listened to for incoming OSC messages
// (tempo updates)
type OscSource struct {
	Name string `json:"name"`
	Port int    `json:"port"`
}

// DeviceMapping binds an inbound listen channel and device to an outbound
// destination. Multiple mappings may share a listen channel; each fires
// independently.
type DeviceMapping struct {
	ID            string      `json:"id,omitempty"`
	DeviceID      string      `json:"device_id"`
	ListenChannel uint8       `json:"listen_channel"`         // 1-16
	SendChannel   *uint8      `json:"send_channel,omitempty"` // 1-16, MIDI destinations
	Destination   Destination `json:"destination"`
}

// NewDeviceMapping creates a mapping with a generated ID
func NewDeviceMapping(deviceID string, listenChannel uint8) DeviceMapping {
	return DeviceMapping{
		ID:            uuid.New().String(),
		DeviceID:      deviceID,
		ListenChannel: listenChannel,
	}
}

// MapConfig is the routing half of a configuration snapshot
type MapConfig struct {
	MidiSessions    []MidiSession             `json:"midi_sessions"`
	OscDestinations map[string]OscDestination `json:"osc_destinations"`
	OscSources      []OscSource               `json:"osc_sources"`
	DeviceMappings  []DeviceMapping           `json:"device_mappings"`
}

// Validate checks channel ranges and referential fields that must be present.
// Mappings that reference unknown devices or destinations are left for
// runtime diagnostics so that one bad entry never blocks the rest.
func (c *MapConfig) Validate() error {
	for i, session := range c.MidiSessions {
		if session.Name == "" {
			return fmt.Errorf("midi session %d: missing name", i)
		}
		if session.OutPort == "" {
			return fmt.Errorf("midi session %q: missing out_port", session.Name)
		}
	}
	for name, dest := range c.OscDestinations {
		if dest.Host == "" || dest.Port <= 0 || dest.Port > 65535 {
			return fmt.Errorf("osc destination %q: invalid host:port %q:%d", name, dest.Host, dest.Port)
		}
	}
	for _, source := range c.OscSources {
		if source.Port <= 0 || source.Port > 65535 {
			return fmt.Errorf("osc source %q: invalid port %d", source.Name, source.Port)
		}
	}
	for i, mapping := range c.DeviceMappings {
		if mapping.DeviceID == "" {
			return fmt.Errorf("mapping %d: missing device_id", i)
		}
		if mapping.ListenChannel < 1 || mapping.ListenChannel > 16 {
			return fmt.Errorf("mapping %d: listen_channel %d out of range 1-16", i, mapping.ListenChannel)
		}
		if ch := mapping.SendChannel; ch != nil && (*ch < 1 || *ch > 16) {
			return fmt.Errorf("mapping %d: send_channel %d out of range 1-16", i, *ch)
		}
		switch mapping.Destination.Type {
		case DestinationMidi:
			if mapping.Destination.SessionName == "" {
				return fmt.Errorf("mapping %d: midi destination missing session_name", i)
			}
		case DestinationOsc:
			if mapping.Destination.DestinationName == "" {
				return fmt.Errorf("mapping %d: osc destination missing destination_name", i)
			}
		default:
			return fmt.Errorf("mapping %d: unknown destination type %q", i, mapping.Destination.Type)
		}
	}
	return nil
}
