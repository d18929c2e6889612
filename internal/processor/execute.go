package processor

import (
	"fmt"

	"github.com/chabad360/go-osc/osc"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-bridge/internal/config"
)

// executeCommand dispatches one command to its destination with
// protocol-specific value shaping. Configuration mismatches (missing
// channel, wrong destination domain, unknown names, degenerate ranges) are
// reported and skipped; only transport failures surface as errors.
func (p *Processor) executeCommand(cmd *config.Command, dest *config.Destination, sendChannel *uint8) error {
	switch cmd.Type {
	case config.CommandProgramChange:
		if sendChannel == nil {
			p.logger.Warn("no send channel specified for program change command")
			return nil
		}
		return p.sendProgramChange(dest, *sendChannel, cmd.Program)

	case config.CommandControlChange:
		if sendChannel == nil {
			p.logger.Warn("no send channel specified for control change command")
			return nil
		}
		return p.sendControlChange(dest, *sendChannel, cmd.Controller, cmd.Value)

	case config.CommandOsc:
		return p.sendOsc(dest, cmd.Address, cmd.Args)

	default:
		p.logger.Warn("unknown command type", zap.String("type", string(cmd.Type)))
		return nil
	}
}

// midiChannel converts a 1-based configuration channel to the wire's
// zero-based 4-bit range
func midiChannel(channel uint8) uint8 {
	if channel > 0 {
		channel--
	}
	return channel & 0x0F
}

func (p *Processor) sendProgramChange(dest *config.Destination, channel, program uint8) error {
	if dest.Type != config.DestinationMidi {
		p.logger.Warn("cannot send MIDI command to OSC destination",
			zap.String("destination", dest.DestinationName))
		return nil
	}

	p.logger.Debug("sending program change",
		zap.String("session", dest.SessionName),
		zap.Uint8("channel", channel),
		zap.Uint8("program", program))

	msg := midi.ProgramChange(midiChannel(channel), program&0x7F)
	return p.midiSender.SendToSession(dest.SessionName, msg)
}

func (p *Processor) sendControlChange(dest *config.Destination, channel, controller, value uint8) error {
	if dest.Type != config.DestinationMidi {
		p.logger.Warn("cannot send MIDI command to OSC destination",
			zap.String("destination", dest.DestinationName))
		return nil
	}

	p.logger.Debug("sending control change",
		zap.String("session", dest.SessionName),
		zap.Uint8("channel", channel),
		zap.Uint8("controller", controller),
		zap.Uint8("value", value))

	msg := midi.ControlChange(midiChannel(channel), controller&0x7F, value&0x7F)
	return p.midiSender.SendToSession(dest.SessionName, msg)
}

func (p *Processor) sendOsc(dest *config.Destination, address string, args []config.OscArg) error {
	if dest.Type != config.DestinationOsc {
		p.logger.Warn("cannot send OSC command to MIDI session",
			zap.String("session", dest.SessionName))
		return nil
	}

	p.mu.RLock()
	oscDest, ok := p.mapping.OscDestinations[dest.DestinationName]
	p.mu.RUnlock()
	if !ok {
		p.logger.Warn("OSC destination not found in configuration",
			zap.String("destination", dest.DestinationName))
		return nil
	}

	msg := osc.NewMessage(address)
	for i := range args {
		value, err := oscValue(&args[i])
		if err != nil {
			p.logger.Warn("skipping OSC command",
				zap.String("address", address),
				zap.Error(err))
			return nil
		}
		msg.Append(value)
	}

	return p.oscSender.SendTo(oscDest.Host, oscDest.Port, msg)
}

// oscValue converts a configured argument to its wire value. Normalized
// arguments are transmitted as plain floats in [0,1].
func oscValue(arg *config.OscArg) (any, error) {
	switch arg.Type {
	case config.OscArgInt:
		return int32(arg.Value), nil
	case config.OscArgFloat:
		return float32(arg.Value), nil
	case config.OscArgString:
		return arg.String, nil
	case config.OscArgBool:
		return arg.Bool, nil
	case config.OscArgNormalized:
		return normalize(arg.Value, arg.Min, arg.Max)
	default:
		return nil, fmt.Errorf("unknown osc arg type %q", arg.Type)
	}
}

// normalize maps value into [0,1] over [min,max]. A degenerate range is an
// error, never a NaN.
func normalize(value, min, max float64) (float32, error) {
	if max == min {
		return 0, fmt.Errorf("degenerate normalization range [%v,%v]", min, max)
	}
	return float32((value - min) / (max - min)), nil
}
