// internal/motion/cycle.go
package motion

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/FrankJIE09/Hans-robot/internal/log"
)

// Stop identifies a point in the cycle.
type Stop int

const (
	StopTarget Stop = iota
	StopLifted
	StopPerturbed
	StopReturned

	// StopPark is the final retreat after the last iteration. It is not part of a cycle.
	StopPark
)

// NumStops is the number of stops in one cycle.
const NumStops = 4

var stopNames = [...]string{"initial", "adjusted", "random", "return", "park"}

func (s Stop) String() string {
	if s < 0 || int(s) >= len(stopNames) {
		return fmt.Sprintf("stop(%d)", int(s))
	}
	return stopNames[s]
}

// CycleConfig fixes the geometry and pacing of every cycle.
type CycleConfig struct {
	LiftAxis     Axis
	LiftOffset   float64 // mm, added on LiftAxis for the lifted stop
	Perturbation float64 // bound applied to every component of the lifted pose
	PollInterval time.Duration
	MaxWait      time.Duration // 0 waits forever
	Move         MoveParams
}

// DefaultCycleConfig returns the rig's historical settings.
func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		LiftAxis:     AxisZ,
		LiftOffset:   80,
		Perturbation: 5,
		PollInterval: 500 * time.Millisecond,
		MaxWait:      2 * time.Minute,
		Move: MoveParams{
			Speed:        50,
			Acceleration: 500,
			UCS:          "Base",
			TCP:          "TCP",
		},
	}
}

// StopResult holds what was commanded and observed at one stop.
// Nil fields were never commanded or could not be read.
// Reached is set once the controller confirmed the move complete.
type StopResult struct {
	Commanded *Pose
	Telemetry *Snapshot
	Reached   bool
}

// CycleResult is the outcome of one cycle, indexed by Stop.
type CycleResult struct {
	Stops [NumStops]StopResult
}

// Reached returns how many stops the controller confirmed complete.
func (r CycleResult) Reached() int {
	n := 0
	for _, s := range r.Stops {
		if s.Reached {
			n++
		}
	}
	return n
}

// Cycle drives target -> lifted -> perturbed -> target on one Service.
type Cycle struct {
	svc Service
	cfg CycleConfig
	rng *rand.Rand
}

// NewCycle validates cfg. A nil rng is seeded from the clock.
func NewCycle(svc Service, cfg CycleConfig, rng *rand.Rand) (*Cycle, error) {
	if svc == nil {
		return nil, errors.New("motion: service required")
	}
	if cfg.LiftAxis < 0 || int(cfg.LiftAxis) >= NumAxes {
		return nil, fmt.Errorf("motion: invalid lift axis %d", cfg.LiftAxis)
	}
	if cfg.Perturbation < 0 {
		return nil, errors.New("motion: perturbation must be >= 0")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("motion: poll interval must be > 0")
	}
	if cfg.MaxWait < 0 {
		return nil, errors.New("motion: max wait must be >= 0")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Cycle{svc: svc, cfg: cfg, rng: rng}, nil
}

// Lifted returns target offset along the lift axis.
func (c *Cycle) Lifted(target Pose) Pose {
	return target.Offset(c.cfg.LiftAxis, c.cfg.LiftOffset)
}

// Run executes one cycle. On a motion failure the result holds every stop
// reached so far and the error is a *MotionError or wraps ErrMotionTimeout.
func (c *Cycle) Run(ctx context.Context, target Pose) (CycleResult, error) {
	var res CycleResult
	lifted := c.Lifted(target)

	for stop := StopTarget; stop < NumStops; stop++ {
		var pose Pose
		switch stop {
		case StopTarget, StopReturned:
			pose = target
		case StopLifted:
			pose = lifted
		case StopPerturbed:
			pose = Perturb(lifted, c.rng, c.cfg.Perturbation)
		}

		res.Stops[stop].Commanded = &pose
		if err := c.MoveTo(ctx, stop, pose); err != nil {
			return res, err
		}
		res.Stops[stop].Reached = true
		res.Stops[stop].Telemetry = c.Capture(ctx, stop)
	}

	return res, nil
}

// MoveTo commands a linear move and blocks until the controller reports done.
func (c *Cycle) MoveTo(ctx context.Context, stop Stop, pose Pose) error {
	log.Debug("motion: move", "stop", stop, "pose", pose)

	if err := c.svc.MoveLinear(ctx, pose, c.cfg.Move); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &MotionError{Stop: stop, Op: "move", Err: err}
	}
	return c.waitDone(ctx, stop)
}

func (c *Cycle) waitDone(ctx context.Context, stop Stop) error {
	start := time.Now()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		st, err := c.svc.MotionState(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &MotionError{Stop: stop, Op: "state", Err: err}
		}
		if st == StateDone {
			return nil
		}

		if c.cfg.MaxWait > 0 && time.Since(start) >= c.cfg.MaxWait {
			return fmt.Errorf("motion: %s: %w after %s", stop, ErrMotionTimeout, c.cfg.MaxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Capture reads joints and TCP pose. A failed read is logged and yields nil.
func (c *Cycle) Capture(ctx context.Context, stop Stop) *Snapshot {
	if tr, ok := c.svc.(TelemetryReader); ok {
		snap, err := tr.Telemetry(ctx)
		if err != nil {
			log.Warn("motion: telemetry readback failed", "stop", stop, "err", err)
			return nil
		}
		return &snap
	}

	joints, err := c.svc.JointPositions(ctx)
	if err != nil {
		log.Warn("motion: joint readback failed", "stop", stop, "err", err)
		return nil
	}
	tcp, err := c.svc.TCPPose(ctx)
	if err != nil {
		log.Warn("motion: tcp readback failed", "stop", stop, "err", err)
		return nil
	}
	return &Snapshot{Joints: joints, TCP: tcp}
}
