package sessions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

func TestSendToSession(t *testing.T) {
	manager := NewManager(zap.NewNop())

	var sent []midi.Message
	manager.Add("rig", func(msg midi.Message) error {
		sent = append(sent, msg)
		return nil
	})

	msg := midi.ProgramChange(0, 5)
	require.NoError(t, manager.SendToSession("rig", msg))

	require.Len(t, sent, 1)
	assert.Equal(t, msg, sent[0])
}

func TestSendToUnknownSessionIsReportedNotFatal(t *testing.T) {
	manager := NewManager(zap.NewNop())

	assert.NoError(t, manager.SendToSession("ghost", midi.ProgramChange(0, 5)))
}

func TestSendToSessionWrapsTransportError(t *testing.T) {
	manager := NewManager(zap.NewNop())
	manager.Add("rig", func(msg midi.Message) error {
		return errors.New("port closed")
	})

	err := manager.SendToSession("rig", midi.ProgramChange(0, 5))
	assert.ErrorContains(t, err, "port closed")
}

func TestAddReplacesAndRemoveDrops(t *testing.T) {
	manager := NewManager(zap.NewNop())

	first, second := 0, 0
	manager.Add("rig", func(midi.Message) error { first++; return nil })
	manager.Add("rig", func(midi.Message) error { second++; return nil })

	require.NoError(t, manager.SendToSession("rig", midi.ProgramChange(0, 1)))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	manager.Remove("rig")
	assert.Empty(t, manager.SessionNames())
}

func TestSessionNames(t *testing.T) {
	manager := NewManager(zap.NewNop())
	manager.Add("rig", func(midi.Message) error { return nil })
	manager.Add("monitor", func(midi.Message) error { return nil })

	assert.ElementsMatch(t, []string{"rig", "monitor"}, manager.SessionNames())
}
