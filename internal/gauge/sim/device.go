// internal/gauge/sim/device.go

// Package sim provides a loopback gauge hub for dry runs.
package sim

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"sync"

	"github.com/FrankJIE09/Hans-robot/internal/gauge"
	"github.com/FrankJIE09/Hans-robot/internal/gauge/frame"
)

// Device answers read-register requests with its base values plus uniform
// jitter in [-Jitter, +Jitter] millimetres. Each register pair is one channel.
type Device struct {
	mu     sync.Mutex
	Base   []float64
	Jitter float64
	rng    *rand.Rand
}

// NewDevice returns a device with the given base values.
func NewDevice(seed int64, jitter float64, base ...float64) *Device {
	return &Device{
		Base:   base,
		Jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Opener returns a gauge.Opener backed by d.
func (d *Device) Opener() gauge.Opener {
	return func() (gauge.Transport, error) {
		return &conn{d: d}, nil
	}
}

func (d *Device) respond(req []byte) ([]byte, error) {
	if len(req) != 8 || req[1] != frame.FuncReadHoldingRegisters {
		return nil, gauge.ErrNoResponse
	}
	if frame.VerifyChecksum(req) != nil {
		return nil, gauge.ErrNoResponse
	}

	channels := int(binary.BigEndian.Uint16(req[4:6])) / 2

	d.mu.Lock()
	values := make([]float64, channels)
	for i := range values {
		if i < len(d.Base) {
			values[i] = d.Base[i]
		}
		if d.Jitter > 0 {
			values[i] += (d.rng.Float64()*2 - 1) * d.Jitter
		}
	}
	d.mu.Unlock()

	return frame.EncodeResponse(req[0], req[1], values), nil
}

// conn is one opened loopback link.
type conn struct {
	d      *Device
	closed bool
}

func (c *conn) Exchange(req []byte) ([]byte, error) {
	if c.closed {
		return nil, errors.New("gauge sim: closed")
	}
	return c.d.respond(req)
}

func (c *conn) Close() error {
	c.closed = true
	return nil
}
