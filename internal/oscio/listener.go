package oscio

import (
	"fmt"

	"github.com/chabad360/go-osc/osc"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-bridge/internal/config"
)

// TempoAddress is the OSC address tempo updates arrive on
const TempoAddress = "/tempo/raw"

// TempoCallback receives decoded tempo updates in BPM
type TempoCallback func(bpm float64)

// Listener runs one OSC server per configured source and forwards decoded
// tempo messages to the callback. Each update is handled on its own
// goroutine so a slow consumer never stalls the socket.
type Listener struct {
	logger *zap.Logger
	tempo  TempoCallback
}

// NewListener creates an OSC listener
func NewListener(logger *zap.Logger, tempo TempoCallback) *Listener {
	return &Listener{logger: logger, tempo: tempo}
}

// Start launches a server goroutine for every source. Sources run for the
// life of the process.
func (l *Listener) Start(sources []config.OscSource) error {
	for _, source := range sources {
		if err := l.startSource(source); err != nil {
			return err
		}
	}
	return nil
}

func (l *Listener) startSource(source config.OscSource) error {
	dispatcher := osc.NewStandardDispatcher()
	if err := dispatcher.AddMsgHandler(TempoAddress, func(msg *osc.Message) {
		bpm, ok := decodeTempo(msg)
		if !ok {
			l.logger.Warn("invalid tempo message",
				zap.String("source", source.Name),
				zap.String("address", msg.Address))
			return
		}
		go l.tempo(bpm)
	}); err != nil {
		return fmt.Errorf("register tempo handler for %q: %w", source.Name, err)
	}

	server := &osc.Server{
		Addr:       fmt.Sprintf("0.0.0.0:%d", source.Port),
		Dispatcher: dispatcher,
	}

	l.logger.Info("starting OSC listener",
		zap.String("source", source.Name),
		zap.Int("port", source.Port))

	go func() {
		if err := server.ListenAndServe(); err != nil {
			l.logger.Error("OSC listener stopped",
				zap.String("source", source.Name),
				zap.Error(err))
		}
	}()
	return nil
}

// decodeTempo extracts a BPM value from a tempo message. The first argument
// may be any OSC numeric type; non-positive values are rejected.
func decodeTempo(msg *osc.Message) (float64, bool) {
	if len(msg.Arguments) == 0 {
		return 0, false
	}

	var bpm float64
	switch v := msg.Arguments[0].(type) {
	case float32:
		bpm = float64(v)
	case float64:
		bpm = v
	case int32:
		bpm = float64(v)
	case int64:
		bpm = float64(v)
	default:
		return 0, false
	}

	if bpm <= 0 {
		return 0, false
	}
	return bpm, true
}
