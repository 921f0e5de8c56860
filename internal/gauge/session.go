// internal/gauge/session.go
package gauge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FrankJIE09/Hans-robot/internal/gauge/frame"
	"github.com/FrankJIE09/Hans-robot/internal/log"
)

// Config is the runtime geometry of one averaged read.
type Config struct {
	Address       uint8
	StartRegister uint16
	Registers     uint16
	Channels      int
	Attempts      int
	Settle        time.Duration

	// VerifyChecksum rejects responses whose trailing CRC does not match.
	// Off by default: the hub stream has always been decoded without it.
	VerifyChecksum bool
}

// Session issues read commands and averages the decoded channels.
type Session struct {
	cfg  Config
	open Opener
	req  []byte
}

// New creates a session with immutable config.
func New(cfg Config, open Opener) (*Session, error) {
	if open == nil {
		return nil, errors.New("gauge: opener required")
	}
	if cfg.Channels <= 0 {
		return nil, errors.New("gauge: channels must be > 0")
	}
	if cfg.Attempts <= 0 {
		return nil, errors.New("gauge: attempts must be > 0")
	}
	if cfg.Registers == 0 {
		return nil, errors.New("gauge: registers must be > 0")
	}
	if cfg.Settle < 0 {
		return nil, errors.New("gauge: settle must be >= 0")
	}

	req := frame.EncodeCommand(
		cfg.Address,
		frame.FuncReadHoldingRegisters,
		frame.ReadRegistersPayload(cfg.StartRegister, cfg.Registers),
	)

	return &Session{cfg: cfg, open: open, req: req}, nil
}

// Request returns a copy of the command frame sent on every attempt.
func (s *Session) Request() []byte {
	return append([]byte(nil), s.req...)
}

// ReadAveraged opens the transport, performs cfg.Attempts exchanges and returns
// one Average per channel. Attempts that time out or do not decode to exactly
// cfg.Channels values are skipped. The transport is closed on every return path.
func (s *Session) ReadAveraged(ctx context.Context) (Reading, error) {
	tr, err := s.open()
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}
	defer func() {
		if cerr := tr.Close(); cerr != nil {
			log.Warn("gauge: close failed", "err", cerr)
		}
	}()

	sums := make([]float64, s.cfg.Channels)
	counts := make([]int, s.cfg.Channels)

	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, s.cfg.Settle); err != nil {
				return nil, err
			}
		}

		values, err := s.sample(tr)
		if err != nil {
			var te *TransportError
			if errors.As(err, &te) {
				return nil, err
			}
			log.Warn("gauge: sample discarded", "attempt", attempt, "err", err)
			continue
		}

		for i, v := range values {
			sums[i] += v
			counts[i]++
		}
	}

	out := make(Reading, s.cfg.Channels)
	for i := range out {
		if counts[i] > 0 {
			out[i] = Average{Value: sums[i] / float64(counts[i]), Samples: counts[i]}
		}
	}

	return out, nil
}

// sample performs exactly one exchange.
func (s *Session) sample(tr Transport) ([]float64, error) {
	resp, err := tr.Exchange(s.req)
	if err != nil {
		if errors.Is(err, ErrNoResponse) ||
			errors.Is(err, frame.ErrMalformedFrame) ||
			errors.Is(err, frame.ErrChecksum) {
			return nil, err
		}
		return nil, &TransportError{Op: "exchange", Err: err}
	}
	if len(resp) == 0 {
		return nil, ErrNoResponse
	}

	if s.cfg.VerifyChecksum {
		if err := frame.VerifyChecksum(resp); err != nil {
			return nil, err
		}
	}

	values, err := frame.DecodeResponse(resp)
	if err != nil {
		return nil, err
	}
	if len(values) != s.cfg.Channels {
		return nil, fmt.Errorf("%w: got %d channels, want %d", frame.ErrMalformedFrame, len(values), s.cfg.Channels)
	}

	return values, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
