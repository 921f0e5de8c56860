// internal/motion/sim/arm.go

// Package sim is an in-memory arm for dry runs and tests.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/FrankJIE09/Hans-robot/internal/log"
	"github.com/FrankJIE09/Hans-robot/internal/motion"
)

// Workspace is the reachable box, in mm, on every translation axis.
const Workspace = 1500.0

// Arm completes each move after PollsPerMove state queries.
// Moves outside the workspace are refused with a controller status error.
type Arm struct {
	mu           sync.Mutex
	PollsPerMove int

	pose    motion.Pose
	target  motion.Pose
	pending int
	moves   int
}

func NewArm(home motion.Pose, pollsPerMove int) *Arm {
	return &Arm{PollsPerMove: pollsPerMove, pose: home, target: home}
}

func (a *Arm) MoveLinear(_ context.Context, target motion.Pose, p motion.MoveParams) error {
	for _, v := range []float64{target.X, target.Y, target.Z} {
		if v > Workspace || v < -Workspace {
			return &motion.StatusError{Op: "MoveL", Code: 40034}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.target = target
	a.pending = a.PollsPerMove
	a.moves++
	log.Debug("sim arm: move", "target", target, "speed", p.Speed)
	return nil
}

func (a *Arm) MotionState(context.Context) (motion.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending > 0 {
		a.pending--
		return motion.StatePending, nil
	}
	a.pose = a.target
	return motion.StateDone, nil
}

// JointPositions derives a repeatable joint vector from the current pose.
func (a *Arm) JointPositions(context.Context) (motion.Joints, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.pose
	return motion.Joints{p.X / 10, p.Y / 10, p.Z / 10, p.Roll, p.Pitch, p.Yaw}, nil
}

func (a *Arm) TCPPose(context.Context) (motion.Pose, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pose, nil
}

// Moves returns how many moves were accepted.
func (a *Arm) Moves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.moves
}

func (a *Arm) String() string {
	return fmt.Sprintf("sim arm at %s", a.pose)
}
