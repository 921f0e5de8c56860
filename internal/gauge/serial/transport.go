// internal/gauge/serial/transport.go
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"

	"github.com/FrankJIE09/Hans-robot/internal/gauge"
)

// Transport implements gauge.Transport over a raw serial port.
// It does not interpret frames: it writes the request and collects whatever
// the hub sends back inside the response window.
type Transport struct {
	port   io.ReadWriteCloser
	window time.Duration
	max    int
}

// Config is minimal port config.
type Config struct {
	Port     string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string

	// Window bounds one response read.
	Window time.Duration
	// Gap is the per-read poll; silence for Gap after data ends the response.
	Gap time.Duration
	// ResponseBytes caps the response buffer.
	ResponseBytes int
}

// Open opens the serial port.
func Open(cfg Config) (*Transport, error) {
	if cfg.Port == "" {
		return nil, errors.New("gauge serial: port required")
	}
	if cfg.Gap <= 0 {
		cfg.Gap = 50 * time.Millisecond
	}

	p, err := serial.Open(&serial.Config{
		Address:  cfg.Port,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Gap,
	})
	if err != nil {
		return nil, fmt.Errorf("gauge serial: open %s: %w", cfg.Port, err)
	}

	return newTransport(p, cfg), nil
}

// Opener returns a gauge.Opener that opens a fresh port per averaged read.
func Opener(cfg Config) gauge.Opener {
	return func() (gauge.Transport, error) {
		return Open(cfg)
	}
}

func newTransport(port io.ReadWriteCloser, cfg Config) *Transport {
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.ResponseBytes <= 0 {
		cfg.ResponseBytes = 256
	}
	return &Transport{
		port:   port,
		window: cfg.Window,
		max:    cfg.ResponseBytes,
	}
}

// Close closes the serial port.
func (t *Transport) Close() error {
	if t == nil || t.port == nil {
		return nil
	}
	return t.port.Close()
}

// ---- gauge.Transport ----

// Exchange writes req and reads until the buffer is full, the line goes quiet
// after data, or the window expires.
func (t *Transport) Exchange(req []byte) ([]byte, error) {
	if t == nil || t.port == nil {
		return nil, errors.New("gauge serial: not open")
	}

	if err := writeAll(t.port, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	buf := make([]byte, t.max)
	n := 0
	deadline := time.Now().Add(t.window)

	for n < len(buf) && time.Now().Before(deadline) {
		m, err := t.port.Read(buf[n:])
		n += m

		if err == nil {
			continue
		}
		if errors.Is(err, serial.ErrTimeout) {
			if n > 0 {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		return nil, fmt.Errorf("read: %w", err)
	}

	if n == 0 {
		return nil, gauge.ErrNoResponse
	}
	return buf[:n], nil
}

// ---- helpers ----

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}
