package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-bridge/internal/config"
)

func TestExecuteProgramChangeClampsChannelAndProgram(t *testing.T) {
	proc, midiRec, _ := newTestProcessor(t)

	cmd := config.Command{Type: config.CommandProgramChange, Program: 200}
	dest := config.Destination{Type: config.DestinationMidi, SessionName: "rig"}

	err := proc.executeCommand(&cmd, &dest, channel(16))
	require.NoError(t, err)

	sent := midiRec.messages()
	require.Len(t, sent, 1)

	var ch, program uint8
	require.True(t, sent[0].msg.GetProgramChange(&ch, &program))
	assert.Equal(t, uint8(15), ch)
	assert.Equal(t, uint8(200&0x7F), program)
}

func TestExecuteControlChangeClampsValues(t *testing.T) {
	proc, midiRec, _ := newTestProcessor(t)

	cmd := config.Command{Type: config.CommandControlChange, Controller: 130, Value: 255}
	dest := config.Destination{Type: config.DestinationMidi, SessionName: "rig"}

	err := proc.executeCommand(&cmd, &dest, channel(1))
	require.NoError(t, err)

	sent := midiRec.messages()
	require.Len(t, sent, 1)

	var ch, controller, value uint8
	require.True(t, sent[0].msg.GetControlChange(&ch, &controller, &value))
	assert.Equal(t, uint8(0), ch)
	assert.Equal(t, uint8(130&0x7F), controller)
	assert.Equal(t, uint8(255&0x7F), value)
}

func TestExecuteMidiCommandWithoutChannelIsSkipped(t *testing.T) {
	proc, midiRec, _ := newTestProcessor(t)

	cmd := config.Command{Type: config.CommandProgramChange, Program: 5}
	dest := config.Destination{Type: config.DestinationMidi, SessionName: "rig"}

	err := proc.executeCommand(&cmd, &dest, nil)

	assert.NoError(t, err)
	assert.Empty(t, midiRec.messages())
}

func TestExecuteMidiCommandToOscDestinationIsSkipped(t *testing.T) {
	proc, midiRec, oscRec := newTestProcessor(t)

	cmd := config.Command{Type: config.CommandControlChange, Controller: 1, Value: 1}
	dest := config.Destination{Type: config.DestinationOsc, DestinationName: "looper"}

	err := proc.executeCommand(&cmd, &dest, channel(1))

	assert.NoError(t, err)
	assert.Empty(t, midiRec.messages())
	assert.Empty(t, oscRec.messages())
}

func TestExecuteOscCommandToMidiDestinationIsSkipped(t *testing.T) {
	proc, midiRec, oscRec := newTestProcessor(t)

	cmd := config.Command{Type: config.CommandOsc, Address: "/x"}
	dest := config.Destination{Type: config.DestinationMidi, SessionName: "rig"}

	err := proc.executeCommand(&cmd, &dest, nil)

	assert.NoError(t, err)
	assert.Empty(t, midiRec.messages())
	assert.Empty(t, oscRec.messages())
}

func TestExecuteOscCommandConvertsArguments(t *testing.T) {
	proc, _, oscRec := newTestProcessor(t)

	cmd := config.Command{
		Type:    config.CommandOsc,
		Address: "/mix/level",
		Args: []config.OscArg{
			{Type: config.OscArgInt, Value: 7},
			{Type: config.OscArgFloat, Value: 1.5},
			{Type: config.OscArgString, String: "verse"},
			{Type: config.OscArgBool, Bool: true},
			{Type: config.OscArgNormalized, Value: 75, Min: 50, Max: 150},
		},
	}
	dest := config.Destination{Type: config.DestinationOsc, DestinationName: "looper"}

	err := proc.executeCommand(&cmd, &dest, nil)
	require.NoError(t, err)

	sent := oscRec.messages()
	require.Len(t, sent, 1)

	args := sent[0].msg.Arguments
	require.Len(t, args, 5)
	assert.Equal(t, int32(7), args[0])
	assert.Equal(t, float32(1.5), args[1])
	assert.Equal(t, "verse", args[2])
	assert.Equal(t, true, args[3])
	assert.InDelta(t, 0.25, args[4].(float32), 1e-6)
}

func TestExecuteOscCommandWithDegenerateRangeIsSkipped(t *testing.T) {
	proc, _, oscRec := newTestProcessor(t)

	cmd := config.Command{
		Type:    config.CommandOsc,
		Address: "/mix/level",
		Args: []config.OscArg{
			{Type: config.OscArgNormalized, Value: 1, Min: 3, Max: 3},
		},
	}
	dest := config.Destination{Type: config.DestinationOsc, DestinationName: "looper"}

	err := proc.executeCommand(&cmd, &dest, nil)

	assert.NoError(t, err)
	assert.Empty(t, oscRec.messages())
}

func TestExecuteOscCommandWithUnknownDestinationIsSkipped(t *testing.T) {
	proc, _, oscRec := newTestProcessor(t)

	cmd := config.Command{Type: config.CommandOsc, Address: "/x"}
	dest := config.Destination{Type: config.DestinationOsc, DestinationName: "nowhere"}

	err := proc.executeCommand(&cmd, &dest, nil)

	assert.NoError(t, err)
	assert.Empty(t, oscRec.messages())
}

func TestNormalize(t *testing.T) {
	v, err := normalize(75, 50, 150)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-6)

	_, err = normalize(1, 2, 2)
	assert.Error(t, err)
}
