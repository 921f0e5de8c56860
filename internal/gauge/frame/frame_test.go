// internal/gauge/frame/frame_test.go
package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_KnownVector(t *testing.T) {
	got := EncodeCommand(0x01, FuncReadHoldingRegisters, ReadRegistersPayload(0, 8))

	require.Equal(t, []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x08, 0x44, 0x0C}, got)
	assert.Equal(t, uint16(0x0C44), Checksum(got[:6]))
}

func TestChecksum_GaugeHubAddress(t *testing.T) {
	got := EncodeCommand(128, FuncReadHoldingRegisters, ReadRegistersPayload(0, 8))

	require.Len(t, got, 8)
	assert.Equal(t, []byte{0x5A, 0x1D}, got[6:])
}

func TestChecksum_EmptyIsInitialValue(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), Checksum(nil))
}

func TestEncodeCommand_StripAndRecompute(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x00},
		ReadRegistersPayload(0x1234, 0x0010),
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	}

	for _, p := range payloads {
		f := EncodeCommand(0x11, 0x04, p)
		body := f[:len(f)-2]
		crc := Checksum(body)

		assert.Equal(t, byte(crc), f[len(f)-2], "crc_lo for payload %x", p)
		assert.Equal(t, byte(crc>>8), f[len(f)-1], "crc_hi for payload %x", p)

		// The residue over a frame including its own CRC is zero for CRC-16/Modbus.
		assert.Equal(t, uint16(0), Checksum(f))
	}
}

func TestDecodeResponse_ChannelCount(t *testing.T) {
	for k := 1; k <= 6; k++ {
		b := make([]byte, HeaderLen+ChannelStride*k+TrailerLen)
		got, err := DecodeResponse(b)
		require.NoError(t, err, "k=%d", k)
		assert.Len(t, got, k)
	}
}

func TestDecodeResponse_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":      nil,
		"too short":  {0x80, 0x03, 0x10, 0x00},
		"no channel": {0x80, 0x03, 0x00, 0xAA, 0xBB},
		"misaligned": make([]byte, HeaderLen+ChannelStride+1+TrailerLen),
		"one short":  make([]byte, HeaderLen+ChannelStride*2-1+TrailerLen),
	}

	for name, b := range cases {
		got, err := DecodeResponse(b)
		assert.ErrorIs(t, err, ErrMalformedFrame, name)
		assert.Nil(t, got, name)
	}
}

func TestDecodeResponse_Sign(t *testing.T) {
	b := []byte{
		0x80, 0x03, 0x08,
		1, 0, 0, 100,
		0, 0, 0, 100,
		0x00, 0x00,
	}

	got, err := DecodeResponse(b)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, -0.1, got[0])
	assert.Equal(t, 0.1, got[1])
}

func TestDecodeResponse_Magnitude(t *testing.T) {
	b := []byte{
		0x80, 0x03, 0x04,
		0, 0xEE, 0x30, 0x39, // 12345 µm, reserved byte ignored
		0x12, 0x34,
	}

	got, err := DecodeResponse(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{12.345}, got)
}

func TestVerifyChecksum(t *testing.T) {
	f := EncodeResponse(128, FuncReadHoldingRegisters, []float64{0.5, -1.25, 0, 3})
	require.NoError(t, VerifyChecksum(f))

	f[4] ^= 0x01
	assert.ErrorIs(t, VerifyChecksum(f), ErrChecksum)

	assert.ErrorIs(t, VerifyChecksum([]byte{1, 2}), ErrMalformedFrame)
}

func TestEncodeResponse_DecodeRoundTrip(t *testing.T) {
	in := []float64{0.5, -1.25, 0, 65.535}

	f := EncodeResponse(128, FuncReadHoldingRegisters, in)
	require.Len(t, f, HeaderLen+ChannelStride*len(in)+TrailerLen)

	got, err := DecodeResponse(f)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestEncodeResponse_Saturates(t *testing.T) {
	got, err := DecodeResponse(EncodeResponse(1, FuncReadHoldingRegisters, []float64{-100}))
	require.NoError(t, err)
	assert.Equal(t, []float64{-65.535}, got)
}
