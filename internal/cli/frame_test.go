// internal/cli/frame_test.go
package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrankJIE09/Hans-robot/internal/gauge/frame"
)

func TestFrame_Encode(t *testing.T) {
	out, err := execute(t, "frame")
	require.NoError(t, err)
	assert.Equal(t, "80 03 00 00 00 08 5A 1D\n", out)

	out, err = execute(t, "frame", "--address", "1")
	require.NoError(t, err)
	assert.Equal(t, "01 03 00 00 00 08 44 0C\n", out)
}

func TestFrame_Decode(t *testing.T) {
	resp := frame.EncodeResponse(128, frame.FuncReadHoldingRegisters, []float64{0.1, -0.1})

	out, err := execute(t, "frame", "--verify", formatHex(resp))
	require.NoError(t, err)
	assert.Equal(t, "channel 1: 0.100 mm\nchannel 2: -0.100 mm\n", out)
}

func TestFrame_DecodeErrors(t *testing.T) {
	_, err := execute(t, "frame", "zz")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "frame", "80 03")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := frame.EncodeResponse(128, frame.FuncReadHoldingRegisters, []float64{1})
	resp[len(resp)-1] ^= 0xFF
	_, err = execute(t, "frame", "--verify", formatHex(resp))
	assert.ErrorIs(t, err, frame.ErrChecksum)
}

func TestParseHex(t *testing.T) {
	b, err := parseHex("0x80:03 00")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x03, 0x00}, b)
}
