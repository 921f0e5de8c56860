// internal/gauge/frame/frame.go
package frame

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/sigurn/crc16"
)

// FuncReadHoldingRegisters is the only function code the gauge hub answers.
const FuncReadHoldingRegisters byte = 0x03

// Response geometry.
// Header and trailer are fixed; channels are 4 bytes each:
//   sign(1) reserved(1) magnitude_hi(1) magnitude_lo(1)
const (
	HeaderLen     = 3
	TrailerLen    = 2
	ChannelStride = 4
	MinFrameLen   = HeaderLen + TrailerLen
)

// Raw magnitudes are micrometres.
const unitsPerMillimetre = 1000.0

var (
	// ErrMalformedFrame means the response is too short or not aligned to the channel stride.
	ErrMalformedFrame = errors.New("frame: malformed response")

	// ErrChecksum means the trailing CRC does not match the frame body.
	ErrChecksum = errors.New("frame: checksum mismatch")
)

var table = crc16.MakeTable(crc16.CRC16_MODBUS)

// Checksum returns the CRC-16/Modbus of data (init 0xFFFF, reflected poly 0xA001).
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, table)
}

// EncodeCommand builds addr | fc | payload | crc_lo | crc_hi.
// The checksum covers everything before it and nothing else.
func EncodeCommand(address, function byte, payload []byte) []byte {
	out := make([]byte, 0, 2+len(payload)+TrailerLen)
	out = append(out, address, function)
	out = append(out, payload...)
	return appendChecksum(out)
}

// ReadRegistersPayload is start(2) count(2), big-endian.
func ReadRegistersPayload(start, count uint16) []byte {
	p := make([]byte, 4)
	binary.BigEndian.PutUint16(p[0:2], start)
	binary.BigEndian.PutUint16(p[2:4], count)
	return p
}

// DecodeResponse converts a response window into millimetre values, one per channel.
//
// Header and trailer bytes are not inspected. Use VerifyChecksum first when the
// stream must be trusted.
func DecodeResponse(b []byte) ([]float64, error) {
	if len(b) < MinFrameLen {
		return nil, ErrMalformedFrame
	}

	body := len(b) - MinFrameLen
	if body == 0 || body%ChannelStride != 0 {
		return nil, ErrMalformedFrame
	}

	out := make([]float64, 0, body/ChannelStride)
	for i := HeaderLen; i+ChannelStride <= len(b)-TrailerLen; i += ChannelStride {
		seg := b[i : i+ChannelStride]

		v := float64(uint16(seg[2])<<8 | uint16(seg[3]))
		if seg[0] != 0 {
			v = -v
		}
		out = append(out, v/unitsPerMillimetre)
	}

	return out, nil
}

// VerifyChecksum checks the trailing crc_lo/crc_hi against the rest of the frame.
func VerifyChecksum(b []byte) error {
	if len(b) < MinFrameLen {
		return ErrMalformedFrame
	}
	n := len(b) - TrailerLen
	got := uint16(b[n]) | uint16(b[n+1])<<8
	if got != Checksum(b[:n]) {
		return ErrChecksum
	}
	return nil
}

// EncodeResponse builds a well-formed response for the given millimetre values.
// Magnitudes are rounded to whole micrometres and saturate at 0xFFFF.
func EncodeResponse(address, function byte, values []float64) []byte {
	out := make([]byte, 0, HeaderLen+len(values)*ChannelStride+TrailerLen)
	out = append(out, address, function, byte(len(values)*ChannelStride))

	for _, v := range values {
		var sign byte
		if v < 0 {
			sign = 1
			v = -v
		}
		raw := math.Round(v * unitsPerMillimetre)
		if raw > math.MaxUint16 {
			raw = math.MaxUint16
		}
		m := uint16(raw)
		out = append(out, sign, 0, byte(m>>8), byte(m))
	}

	return appendChecksum(out)
}

// ---- helpers ----

func appendChecksum(b []byte) []byte {
	crc := Checksum(b)
	return append(b, byte(crc), byte(crc>>8))
}
