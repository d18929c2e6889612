package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-bridge/internal/config"
	internalmidi "github.com/PixPMusic/gopher-bridge/internal/midi"
	"github.com/PixPMusic/gopher-bridge/internal/oscio"
	"github.com/PixPMusic/gopher-bridge/internal/processor"
	"github.com/PixPMusic/gopher-bridge/internal/sessions"
)

func main() {
	devicePath := flag.String("devices", "", "path to the devices file (default: user config dir)")
	mapPath := flag.String("mapping", "", "path to the mapping file (default: user config dir)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	deviceCfg, mapCfg, err := loadConfigs(*devicePath, *mapPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize MIDI manager
	midiManager := internalmidi.NewManager()
	defer midiManager.Close()

	sessionManager := sessions.NewManager(logger)
	oscSender := oscio.NewSender(logger)

	proc := processor.New(logger, deviceCfg, mapCfg, sessionManager, oscSender)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open configured sessions and their inbound listeners. A session whose
	// ports are unavailable is skipped so the rest of the bridge still runs.
	var listenerStops []func()
	for _, session := range mapCfg.MidiSessions {
		send, err := midiManager.Sender(session.OutPort)
		if err != nil {
			logger.Warn("skipping session",
				zap.String("session", session.Name),
				zap.Error(err))
			continue
		}
		sessionManager.Add(session.Name, send)
		logger.Info("session ready",
			zap.String("session", session.Name),
			zap.String("out_port", session.OutPort))

		if session.InPort == "" {
			continue
		}
		stopListening, err := midiManager.StartListening(session.InPort, func(portName string, channel, program uint8) {
			go proc.HandleProgramChange(channel, program)
		})
		if err != nil {
			logger.Warn("failed to listen on session input",
				zap.String("session", session.Name),
				zap.Error(err))
			continue
		}
		listenerStops = append(listenerStops, stopListening)
	}

	oscListener := oscio.NewListener(logger, func(bpm float64) {
		proc.HandleTempo(ctx, bpm)
	})
	if err := oscListener.Start(mapCfg.OscSources); err != nil {
		logger.Fatal("failed to start OSC listeners", zap.Error(err))
	}

	logger.Info("bridge ready",
		zap.Int("sessions", len(sessionManager.SessionNames())),
		zap.Int("osc_sources", len(mapCfg.OscSources)),
		zap.Int("mappings", len(mapCfg.DeviceMappings)))

	<-ctx.Done()
	logger.Info("shutting down")
	for _, stopListening := range listenerStops {
		stopListening()
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfigs(devicePath, mapPath string) (*config.DeviceConfig, *config.MapConfig, error) {
	var err error
	if devicePath == "" {
		if devicePath, err = config.DefaultDevicePath(); err != nil {
			return nil, nil, err
		}
	}
	if mapPath == "" {
		if mapPath, err = config.DefaultMapPath(); err != nil {
			return nil, nil, err
		}
	}

	deviceCfg, err := config.LoadDeviceConfig(devicePath)
	if err != nil {
		return nil, nil, err
	}
	mapCfg, err := config.LoadMapConfig(mapPath)
	if err != nil {
		return nil, nil, err
	}
	return deviceCfg, mapCfg, nil
}
