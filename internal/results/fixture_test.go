// internal/results/fixture_test.go
package results

import (
	"time"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

func ptr(v float64) *float64 { return &v }

func pose(p motion.Pose) *motion.Pose { return &p }

func telemetry(p motion.Pose) *motion.Snapshot {
	return &motion.Snapshot{Joints: motion.Joints{10, 20, 30, 40, 50, 60}, TCP: p}
}

// fixture is a two-iteration run: a full cycle with one gauge channel missing,
// then a cycle aborted by the controller at the perturbed stop.
func fixture() (Run, []Record) {
	target := motion.Pose{X: 100, Z: 200}
	lifted := motion.Pose{X: 100, Z: 280}
	random := motion.Pose{X: 101.5, Y: -2.25, Z: 283, Roll: 0.5, Pitch: -1, Yaw: 4}

	run := Run{
		ID:         "run-1",
		StartedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Target:     target,
		Iterations: 2,
		Channels:   2,
	}

	at := time.Date(2024, 1, 2, 3, 5, 0, 0, time.UTC)

	first := Record{
		Iteration: 1,
		Time:      at,
		Gauge:     []*float64{ptr(0.25), nil},
		Status: status.Snapshot{
			Health:        status.HealthGaugePartial,
			StopsReached:  4,
			ValidChannels: 1,
		},
	}
	first.Stops[motion.StopTarget] = motion.StopResult{Commanded: pose(target), Telemetry: telemetry(target)}
	first.Stops[motion.StopLifted] = motion.StopResult{Commanded: pose(lifted), Telemetry: telemetry(lifted)}
	first.Stops[motion.StopPerturbed] = motion.StopResult{Commanded: pose(random), Telemetry: telemetry(random)}
	first.Stops[motion.StopReturned] = motion.StopResult{Commanded: pose(target)}

	second := Record{
		Iteration: 2,
		Time:      at.Add(time.Minute),
		Gauge:     []*float64{ptr(0.1), ptr(-0.2)},
		Status: status.Snapshot{
			Health:        status.HealthMotionError,
			LastErrorCode: 40034,
			StopsReached:  2,
			ValidChannels: 2,
		},
	}
	second.Stops[motion.StopTarget] = motion.StopResult{Commanded: pose(target), Telemetry: telemetry(target)}
	second.Stops[motion.StopLifted] = motion.StopResult{Commanded: pose(lifted), Telemetry: telemetry(lifted)}
	second.Stops[motion.StopPerturbed] = motion.StopResult{Commanded: pose(random)}

	return run, []Record{first, second}
}
