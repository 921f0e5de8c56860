// internal/status/encode_test.go
package status

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/FrankJIE09/Hans-robot/internal/gauge"
	"github.com/FrankJIE09/Hans-robot/internal/motion"
)

func TestEvaluate(t *testing.T) {
	motionErr := &motion.MotionError{
		Stop: motion.StopPerturbed,
		Op:   "move",
		Err:  &motion.StatusError{Op: "MoveL", Code: 40034},
	}
	timeout := fmt.Errorf("motion: return: %w", motion.ErrMotionTimeout)
	gaugeErr := &gauge.TransportError{Op: "open", Err: errors.New("no such device")}

	cases := []struct {
		name   string
		in     Outcome
		health uint16
		code   int
	}{
		{"ok", Outcome{StopsReached: 4, ValidChannels: 4, WantChannels: 4}, HealthOK, CodeNone},
		{"partial", Outcome{StopsReached: 4, ValidChannels: 3, WantChannels: 4}, HealthGaugePartial, CodeNone},
		{"gauge error", Outcome{GaugeErr: gaugeErr, WantChannels: 4}, HealthGaugeError, CodeUnclassified},
		{"motion error", Outcome{CycleErr: motionErr, GaugeErr: gaugeErr}, HealthMotionError, 40034},
		{"timeout", Outcome{CycleErr: timeout}, HealthMotionTimeout, CodeUnclassified},
		{"aborted", Outcome{CycleErr: context.Canceled}, HealthAborted, CodeUnclassified},
		{"aborted while reading", Outcome{StopsReached: 4, GaugeErr: context.Canceled, WantChannels: 4}, HealthAborted, CodeUnclassified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Evaluate(tc.in)
			if s.Health != tc.health {
				t.Fatalf("health: got %s want %s", HealthName(s.Health), HealthName(tc.health))
			}
			if s.LastErrorCode != tc.code {
				t.Fatalf("code: got %d want %d", s.LastErrorCode, tc.code)
			}
		})
	}
}

func TestErrorCode_NoCode(t *testing.T) {
	if got := ErrorCode(nil); got != CodeNone {
		t.Fatalf("nil: got %d", got)
	}
	if got := ErrorCode(errors.New("x")); got != CodeUnclassified {
		t.Fatalf("plain: got %d", got)
	}
}

func TestHealthName(t *testing.T) {
	if HealthName(HealthMotionTimeout) != "motion_timeout" {
		t.Fatal("unexpected name")
	}
	if HealthName(99) != "unknown" {
		t.Fatal("unexpected name for unknown code")
	}
	if !(Snapshot{Health: HealthOK}).OK() {
		t.Fatal("ok snapshot not OK")
	}
}

func TestSnapshotRegisters(t *testing.T) {
	s := Snapshot{
		Health:        HealthMotionError,
		LastErrorCode: 40034,
		StopsReached:  2,
		ValidChannels: 4,
	}

	regs := s.Registers(17)
	want := [SlotLiveCount]uint16{HealthMotionError, 40034, 2, 4, 17}
	if regs != want {
		t.Fatalf("registers: got=%v want=%v", regs, want)
	}
}

func TestSnapshotRegistersSaturate(t *testing.T) {
	s := Snapshot{Health: HealthMotionTimeout, LastErrorCode: CodeUnclassified}

	regs := s.Registers(70000)
	if regs[SlotLastErrorCode] != 0xFFFF {
		t.Fatalf("-1 must encode as 0xFFFF, got %#x", regs[SlotLastErrorCode])
	}
	if regs[SlotIteration] != 0xFFFF {
		t.Fatalf("iteration must saturate, got %d", regs[SlotIteration])
	}

	s.LastErrorCode = 1 << 20
	if got := s.Registers(1)[SlotLastErrorCode]; got != 0xFFFF {
		t.Fatalf("large code must saturate, got %d", got)
	}
}
