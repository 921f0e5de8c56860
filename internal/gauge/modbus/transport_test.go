// internal/gauge/modbus/transport_test.go
package modbus

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"

	"github.com/FrankJIE09/Hans-robot/internal/gauge"
	"github.com/FrankJIE09/Hans-robot/internal/gauge/frame"
)

func TestOpen_RequiresPort(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatalf("expected error for empty port, got nil")
	}
}

func TestExchangeErr_TimeoutIsNoResponse(t *testing.T) {
	err := exchangeErr(fmt.Errorf("read: %w", serial.ErrTimeout))
	if !errors.Is(err, gauge.ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", err)
	}
}

func TestExchangeErr_PassThrough(t *testing.T) {
	in := errors.New("input/output error")
	if err := exchangeErr(in); err != in {
		t.Fatalf("expected pass-through, got %v", err)
	}
}

// scriptedHandler replays one response. Verify comes from the real handler.
type scriptedHandler struct {
	*modbus.RTUClientHandler
	resp []byte
	err  error
	sent [][]byte
}

func (h *scriptedHandler) Send(req []byte) ([]byte, error) {
	h.sent = append(h.sent, req)
	return h.resp, h.err
}

func (h *scriptedHandler) Close() error { return nil }

func newScripted(resp []byte, err error) (*Transport, *scriptedHandler) {
	h := &scriptedHandler{RTUClientHandler: modbus.NewRTUClientHandler("unused"), resp: resp, err: err}
	return &Transport{handler: h}, h
}

func readRequest(address byte) []byte {
	return frame.EncodeCommand(address, frame.FuncReadHoldingRegisters, frame.ReadRegistersPayload(0, 4))
}

func TestExchange_ReturnsVerifiedResponse(t *testing.T) {
	resp := frame.EncodeResponse(128, frame.FuncReadHoldingRegisters, []float64{0.25, -1.5})
	tr, h := newScripted(resp, nil)

	got, err := tr.Exchange(readRequest(128))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if !bytes.Equal(got, resp) {
		t.Fatalf("response: got=% X want=% X", got, resp)
	}
	if len(h.sent) != 1 || !bytes.Equal(h.sent[0], readRequest(128)) {
		t.Fatalf("unexpected request: % X", h.sent)
	}

	values, err := frame.DecodeResponse(got)
	if err != nil || len(values) != 2 || values[1] != -1.5 {
		t.Fatalf("decode: %v %v", values, err)
	}
}

func TestExchange_SlaveMismatchIsMalformed(t *testing.T) {
	tr, _ := newScripted(frame.EncodeResponse(7, frame.FuncReadHoldingRegisters, []float64{1}), nil)

	if _, err := tr.Exchange(readRequest(128)); !errors.Is(err, frame.ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestExchange_ShortResponseIsMalformed(t *testing.T) {
	tr, _ := newScripted([]byte{128, 3}, nil)

	if _, err := tr.Exchange(readRequest(128)); !errors.Is(err, frame.ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestExchange_TimeoutIsNoResponse(t *testing.T) {
	tr, _ := newScripted(nil, serial.ErrTimeout)

	if _, err := tr.Exchange(readRequest(128)); !errors.Is(err, gauge.ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", err)
	}
}
