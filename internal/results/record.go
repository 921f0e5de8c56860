// internal/results/record.go

// Package results persists measurement runs.
package results

import (
	"time"

	"github.com/google/uuid"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// Run describes one measurement run. It is handed to every sink before the first record.
type Run struct {
	ID         string
	StartedAt  time.Time
	Target     motion.Pose
	Iterations int
	Channels   int
	DryRun     bool
}

// NewRun stamps a fresh run id and start time.
func NewRun(target motion.Pose, iterations, channels int, dryRun bool) Run {
	return Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Target:     target,
		Iterations: iterations,
		Channels:   channels,
		DryRun:     dryRun,
	}
}

// Record is one iteration's measured data.
// Absent values are nil: a gauge channel with no valid sample, a stop never
// reached, or telemetry that could not be read.
type Record struct {
	Iteration int // 1-based
	Time      time.Time
	Gauge     []*float64
	Stops     [motion.NumStops]motion.StopResult
	Status    status.Snapshot
}

// Sink receives records as they are produced.
type Sink interface {
	Begin(run Run) error
	Write(rec Record) error
	Close() error
}

// Multi fans out to every sink in order. All sinks are always called;
// the last error wins.
type Multi []Sink

func (m Multi) Begin(run Run) error {
	var last error
	for _, s := range m {
		if err := s.Begin(run); err != nil {
			last = err
		}
	}
	return last
}

func (m Multi) Write(rec Record) error {
	var last error
	for _, s := range m {
		if err := s.Write(rec); err != nil {
			last = err
		}
	}
	return last
}

func (m Multi) Close() error {
	var last error
	for _, s := range m {
		if err := s.Close(); err != nil {
			last = err
		}
	}
	return last
}

// stopLabels name the stops in persisted output.
var stopLabels = [motion.NumStops]string{"Initial", "Adjusted", "Random", "Return"}
