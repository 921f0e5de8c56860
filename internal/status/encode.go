// internal/status/encode.go
package status

import (
	"context"
	"errors"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
)

// Outcome is what one iteration produced, before classification.
type Outcome struct {
	CycleErr      error
	GaugeErr      error
	StopsReached  int
	ValidChannels int
	WantChannels  int
}

// Evaluate classifies an iteration. Motion failures outrank gauge failures.
// No IO. No side effects.
func Evaluate(o Outcome) Snapshot {
	s := Snapshot{
		StopsReached:  o.StopsReached,
		ValidChannels: o.ValidChannels,
	}

	switch {
	case canceled(o.CycleErr), canceled(o.GaugeErr):
		s.Health = HealthAborted
	case errors.Is(o.CycleErr, motion.ErrMotionTimeout):
		s.Health = HealthMotionTimeout
	case o.CycleErr != nil:
		s.Health = HealthMotionError
	case o.GaugeErr != nil:
		s.Health = HealthGaugeError
	case o.ValidChannels < o.WantChannels:
		s.Health = HealthGaugePartial
	default:
		s.Health = HealthOK
	}

	if o.CycleErr != nil {
		s.LastErrorCode = ErrorCode(o.CycleErr)
	} else {
		s.LastErrorCode = ErrorCode(o.GaugeErr)
	}

	return s
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ErrorCode extracts a numeric code from err through the coder interfaces
// implemented by controller and transport errors.
func ErrorCode(err error) int {
	if err == nil {
		return CodeNone
	}

	type coderA interface{ Code() int }
	type coderB interface{ ErrorCode() int }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return CodeUnclassified
}
