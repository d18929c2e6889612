package processor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-bridge/internal/config"
)

// Calibration for control-change tempo delivery: 60-180 BPM rises over the
// 7-bit range, 333-1000ms (the same tempo span as durations) falls over it.
const (
	ccTempoMin = 60.0
	ccTempoMax = 180.0
	ccTimeMin  = 333.0
	ccTimeMax  = 1000.0
)

const tapCount = 4

// tempoUpdate is the per-device work collected under the configuration lock
type tempoUpdate struct {
	deviceName  string
	spec        config.TempoSpec
	destination config.Destination
	sendChannel *uint8
}

// HandleTempo distributes a new tempo to every tempo-capable device. Any
// sequence still in flight from an earlier tempo is superseded before the
// new fan-out starts; per-device sequences then run independently, sharing
// only the epoch cell.
func (p *Processor) HandleTempo(ctx context.Context, bpm float64) {
	if bpm <= 0 {
		p.logger.Warn("ignoring non-positive tempo", zap.Float64("bpm", bpm))
		return
	}

	p.logger.Info("tempo updated", zap.Float64("bpm", bpm))

	// Invalidate every running sequence before anything else happens.
	p.epoch.Advance()

	p.mu.Lock()
	p.bpm = bpm
	p.mu.Unlock()

	updates := p.collectTempoUpdates()

	// The generation the new sequences validate themselves against.
	gen := p.epoch.Advance()

	for _, update := range updates {
		go p.runTempoUpdate(ctx, update, bpm, gen)
	}
}

// collectTempoUpdates snapshots (spec, destination, channel) for every
// mapped device with a tempo spec. The read lock is released before any
// command is sent.
func (p *Processor) collectTempoUpdates() []tempoUpdate {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var updates []tempoUpdate
	for _, mapping := range p.mapping.DeviceMappings {
		device := p.devices.GetDevice(mapping.DeviceID)
		if device == nil || device.TempoSpec == nil {
			continue
		}
		updates = append(updates, tempoUpdate{
			deviceName:  device.Name,
			spec:        *device.TempoSpec,
			destination: mapping.Destination,
			sendChannel: mapping.SendChannel,
		})
	}
	return updates
}

func (p *Processor) runTempoUpdate(ctx context.Context, update tempoUpdate, bpm float64, gen uint64) {
	switch update.spec.Type {
	case config.TempoTap:
		p.runTapTempo(ctx, update, bpm, gen)
	case config.TempoRaw:
		p.runRawTempo(update, bpm)
	default:
		p.logger.Warn("unknown tempo spec type",
			zap.String("device", update.deviceName),
			zap.String("type", string(update.spec.Type)))
	}
}

// runTapTempo replays the command list four times at quarter-note spacing.
// Every iteration revalidates the generation before sending, and the waits
// between taps wake immediately on a publish. Being superseded is a silent,
// expected halt.
func (p *Processor) runTapTempo(ctx context.Context, update tempoUpdate, bpm float64, gen uint64) {
	interval := quarterNote(bpm)

	p.logger.Debug("starting tap tempo",
		zap.String("device", update.deviceName),
		zap.Duration("interval", interval),
		zap.Uint64("generation", gen))

	for tap := 0; tap < tapCount; tap++ {
		if p.epoch.Current() != gen {
			p.logger.Debug("tap tempo superseded",
				zap.String("device", update.deviceName),
				zap.Uint64("generation", gen))
			return
		}

		for i := range update.spec.Commands {
			if err := p.executeCommand(&update.spec.Commands[i], &update.destination, update.sendChannel); err != nil {
				p.logger.Error("tap tempo command failed",
					zap.String("device", update.deviceName),
					zap.Error(err))
			}
		}

		if tap < tapCount-1 {
			if !p.epoch.Wait(ctx, gen, interval) {
				p.logger.Debug("tap tempo superseded during wait",
					zap.String("device", update.deviceName),
					zap.Uint64("generation", gen))
				return
			}
		}
	}

	p.logger.Debug("tap tempo completed",
		zap.String("device", update.deviceName),
		zap.Uint64("generation", gen))
}

// runRawTempo sends the command list once with the computed tempo scalar
// substituted into each command's numeric payload
func (p *Processor) runRawTempo(update tempoUpdate, bpm float64) {
	scalar := rawTempoScalar(update.spec.DataType, bpm)

	p.logger.Debug("sending raw tempo",
		zap.String("device", update.deviceName),
		zap.String("data_type", string(update.spec.DataType)),
		zap.Float64("value", scalar))

	for i := range update.spec.Commands {
		cmd, err := substituteTempo(update.spec.Commands[i], update.spec.DataType, scalar)
		if err != nil {
			p.logger.Warn("skipping raw tempo command",
				zap.String("device", update.deviceName),
				zap.Error(err))
			continue
		}
		if err := p.executeCommand(&cmd, &update.destination, update.sendChannel); err != nil {
			p.logger.Error("raw tempo command failed",
				zap.String("device", update.deviceName),
				zap.Error(err))
		}
	}
}

// rawTempoScalar computes the value a raw tempo spec delivers: the BPM
// itself, or the quarter-note duration in milliseconds
func rawTempoScalar(dataType config.TempoDataType, bpm float64) float64 {
	if dataType == config.TempoDataTime {
		return 60000.0 / bpm
	}
	return bpm
}

// substituteTempo rewrites a command's numeric payload with the tempo
// scalar. OSC float and int arguments take the scalar directly, normalized
// arguments take its position within their range, control changes take the
// calibrated 7-bit value. Other commands pass through untouched.
func substituteTempo(cmd config.Command, dataType config.TempoDataType, scalar float64) (config.Command, error) {
	switch cmd.Type {
	case config.CommandOsc:
		args := make([]config.OscArg, len(cmd.Args))
		for i, arg := range cmd.Args {
			switch arg.Type {
			case config.OscArgFloat, config.OscArgInt:
				arg.Value = scalar
			case config.OscArgNormalized:
				norm, err := normalize(scalar, arg.Min, arg.Max)
				if err != nil {
					return cmd, err
				}
				arg = config.OscArg{Type: config.OscArgFloat, Value: float64(norm)}
			}
			args[i] = arg
		}
		cmd.Args = args
	case config.CommandControlChange:
		cmd.Value = tempoCC(dataType, scalar)
	}
	return cmd, nil
}

// tempoCC maps a tempo scalar into the 7-bit range using the fixed
// calibration, clamped at the edges. Time values are inverted so a faster
// tempo yields a higher CC value.
func tempoCC(dataType config.TempoDataType, scalar float64) uint8 {
	var v float64
	if dataType == config.TempoDataTime {
		v = (ccTimeMax - scalar) / (ccTimeMax - ccTimeMin) * 127.0
	} else {
		v = (scalar - ccTempoMin) / (ccTempoMax - ccTempoMin) * 127.0
	}
	if v < 0 {
		v = 0
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}

// quarterNote returns the quarter-note duration for a tempo
func quarterNote(bpm float64) time.Duration {
	return time.Duration(60000.0 / bpm * float64(time.Millisecond))
}
