// Package processor is the routing core of the bridge: it resolves inbound
// program changes against the device mappings, executes command lists across
// protocol domains, and distributes tempo updates with epoch-based
// supersession of in-flight sequences.
package processor

import (
	"sync"

	"github.com/chabad360/go-osc/osc"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-bridge/internal/config"
)

// MidiSender delivers MIDI messages to named sessions
type MidiSender interface {
	SendToSession(name string, msg midi.Message) error
}

// OscSender delivers OSC messages to host:port destinations
type OscSender interface {
	SendTo(host string, port int, msg *osc.Message) error
}

// Processor routes inbound events to configured device commands. The
// configuration snapshot is read-shared: the processor never mutates it,
// and no lock is held across a network send.
type Processor struct {
	logger *zap.Logger

	mu      sync.RWMutex // guards devices, mapping and bpm
	devices *config.DeviceConfig
	mapping *config.MapConfig
	bpm     float64

	epoch *Epoch

	midiSender MidiSender
	oscSender  OscSender
}

// New creates a processor over a configuration snapshot
func New(logger *zap.Logger, devices *config.DeviceConfig, mapping *config.MapConfig, midiSender MidiSender, oscSender OscSender) *Processor {
	return &Processor{
		logger:     logger,
		devices:    devices,
		mapping:    mapping,
		epoch:      NewEpoch(),
		midiSender: midiSender,
		oscSender:  oscSender,
	}
}

// Route is one resolved (device, program, mapping) tuple
type Route struct {
	Device  config.Device
	Program config.Program
	Mapping config.DeviceMapping
}

// Resolve returns the routes for an inbound program change. Mappings whose
// device or program cannot be found are reported and excluded; the rest
// still resolve.
func (p *Processor) Resolve(listenChannel uint8, program uint8) []Route {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var routes []Route
	for _, mapping := range p.mapping.DeviceMappings {
		if mapping.ListenChannel != listenChannel {
			continue
		}

		device := p.devices.GetDevice(mapping.DeviceID)
		if device == nil {
			p.logger.Warn("device not found in configuration",
				zap.String("device_id", mapping.DeviceID))
			continue
		}

		deviceProgram := device.Program(program)
		if deviceProgram == nil {
			p.logger.Warn("program not found on device",
				zap.Uint8("program", program),
				zap.String("device", device.Name))
			continue
		}

		routes = append(routes, Route{
			Device:  *device,
			Program: *deviceProgram,
			Mapping: mapping,
		})
	}
	return routes
}

// HandleProgramChange executes the command list of every mapping listening
// on the channel. A failing command or mapping never aborts its siblings.
func (p *Processor) HandleProgramChange(channel uint8, program uint8) {
	p.logger.Info("program change received",
		zap.Uint8("channel", channel),
		zap.Uint8("program", program))

	for _, route := range p.Resolve(channel, program) {
		p.logger.Info("executing program",
			zap.String("program", route.Program.Name),
			zap.String("device", route.Device.Name))

		for i := range route.Program.Commands {
			if err := p.executeCommand(&route.Program.Commands[i], &route.Mapping.Destination, route.Mapping.SendChannel); err != nil {
				p.logger.Error("command failed",
					zap.String("device", route.Device.Name),
					zap.Error(err))
			}
		}
	}
}

// CurrentBPM returns the most recent tempo, if one has been received
func (p *Processor) CurrentBPM() (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bpm, p.bpm > 0
}
