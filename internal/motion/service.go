// internal/motion/service.go
package motion

import (
	"context"
	"errors"
	"fmt"
)

// State is the answer to "is motion done".
type State int

const (
	StatePending State = iota
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "done"
	}
	return "pending"
}

// Joints are the six joint angles in degrees.
type Joints [6]float64

// MoveParams are passed through to the controller on every linear move.
type MoveParams struct {
	Speed        float64
	Acceleration float64
	UCS          string // coordinate system
	TCP          string
	Radius       float64 // blend radius; 0 stops exactly at the target
}

// Service is the remote motion controller as the cycle sees it.
// Implementations report controller-side failures as *StatusError.
type Service interface {
	MoveLinear(ctx context.Context, target Pose, p MoveParams) error
	MotionState(ctx context.Context) (State, error)
	JointPositions(ctx context.Context) (Joints, error)
	TCPPose(ctx context.Context) (Pose, error)
}

// TelemetryReader is implemented by services that can read joints and TCP
// pose from one controller sample. Capture prefers it when available.
type TelemetryReader interface {
	Telemetry(ctx context.Context) (Snapshot, error)
}

// Snapshot is the telemetry captured at one stop.
type Snapshot struct {
	Joints Joints
	TCP    Pose
}

// ---- errors ----

// ErrMotionTimeout means the controller never reported completion within the wait bound.
var ErrMotionTimeout = errors.New("motion: completion wait timed out")

// StatusError is a non-zero status returned by the controller.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("controller %s failed: code %d", e.Op, e.Code)
}

// MotionError aborts a cycle at Stop.
type MotionError struct {
	Stop Stop
	Op   string
	Err  error
}

func (e *MotionError) Error() string {
	return fmt.Sprintf("motion: %s: %s: %v", e.Stop, e.Op, e.Err)
}

func (e *MotionError) Unwrap() error { return e.Err }

// Code returns the controller status code, or -1 when the failure carried none.
func (e *MotionError) Code() int {
	var se *StatusError
	if errors.As(e.Err, &se) {
		return se.Code
	}
	return -1
}
