// internal/gauge/modbus/transport.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"

	"github.com/FrankJIE09/Hans-robot/internal/gauge"
	"github.com/FrankJIE09/Hans-robot/internal/gauge/frame"
	"github.com/FrankJIE09/Hans-robot/internal/log"
)

// rtuHandler is the part of *modbus.RTUClientHandler the transport uses.
type rtuHandler interface {
	Send(aduRequest []byte) ([]byte, error)
	Verify(aduRequest, aduResponse []byte) error
	Close() error
}

// Transport is a single RTU serial connection to the gauge hub.
// Unlike the raw transport it reads exactly the response length implied by the
// request and checks the response length and slave address before handing the
// frame back. CRC is checked by the session's checksum verification.
type Transport struct {
	mu      sync.Mutex
	handler rtuHandler
}

type Config struct {
	Port     string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	SlaveID  uint8
	Timeout  time.Duration
}

func Open(cfg Config) (*Transport, error) {
	if cfg.Port == "" {
		return nil, errors.New("gauge modbus: port required")
	}

	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.StopBits = cfg.StopBits
	h.Parity = cfg.Parity
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout
	h.Logger = log.Std("gauge-modbus")

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("gauge modbus: connect %s: %w", cfg.Port, err)
	}

	return &Transport{handler: h}, nil
}

// Opener returns a gauge.Opener that connects a fresh handler per averaged read.
func Opener(cfg Config) gauge.Opener {
	return func() (gauge.Transport, error) {
		return Open(cfg)
	}
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handler.Close()
}

// Exchange sends one ADU and returns the raw response ADU.
func (t *Transport) Exchange(req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	resp, err := t.handler.Send(req)
	if err != nil {
		return nil, exchangeErr(err)
	}
	if err := t.handler.Verify(req, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", frame.ErrMalformedFrame, err)
	}

	return resp, nil
}

// exchangeErr maps a read timeout to gauge.ErrNoResponse so the session retries.
func exchangeErr(err error) error {
	if errors.Is(err, serial.ErrTimeout) {
		return gauge.ErrNoResponse
	}
	return err
}
