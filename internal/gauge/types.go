// internal/gauge/types.go
package gauge

import (
	"errors"
	"fmt"
)

// Transport is one open link to the gauge hub.
// A Session owns it exclusively between Opener and Close.
type Transport interface {
	// Exchange writes one request frame and returns the raw response window.
	// Silence within the read window is reported as ErrNoResponse.
	Exchange(req []byte) ([]byte, error)
	Close() error
}

// Opener acquires a fresh transport. It is called once per averaged read.
type Opener func() (Transport, error)

// ErrNoResponse means the device sent nothing inside the read window.
// The session retries on it; it is never a TransportError.
var ErrNoResponse = errors.New("gauge: no response")

// TransportError reports an unusable serial link (open, write or read failure).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gauge: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Average is one channel's mean in millimetres over the samples that decoded.
// Samples == 0 marks the channel absent.
type Average struct {
	Value   float64
	Samples int
}

// Valid reports whether at least one sample contributed.
func (a Average) Valid() bool { return a.Samples > 0 }

// Reading holds exactly one Average per configured channel.
type Reading []Average

// ValidChannels counts channels with at least one sample.
func (r Reading) ValidChannels() int {
	n := 0
	for _, a := range r {
		if a.Valid() {
			n++
		}
	}
	return n
}

// Pointers returns the values with nil for absent channels.
func (r Reading) Pointers() []*float64 {
	out := make([]*float64, len(r))
	for i, a := range r {
		if a.Valid() {
			v := a.Value
			out[i] = &v
		}
	}
	return out
}
