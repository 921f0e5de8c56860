// internal/measure/runner.go

// Package measure runs repeatability measurements: N pose cycles, each
// followed by one averaged gauge read.
package measure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FrankJIE09/Hans-robot/internal/config"
	"github.com/FrankJIE09/Hans-robot/internal/gauge"
	"github.com/FrankJIE09/Hans-robot/internal/log"
	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/results"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// Gauge abstracts the averaged read the runner needs.
type Gauge interface {
	ReadAveraged(ctx context.Context) (gauge.Reading, error)
}

// Config is the minimal runtime config the runner needs.
type Config struct {
	Channels int
	DryRun   bool

	// ParkTimeout bounds the park move. 0 relies on the cycle's own wait bound.
	ParkTimeout time.Duration
}

// Runner owns nothing: the cycle, gauge and sink are supplied and closed by the caller.
type Runner struct {
	cfg   Config
	cycle *motion.Cycle
	gauge Gauge
	sink  results.Sink
}

// New creates a runner. sink may be nil.
func New(cfg Config, cycle *motion.Cycle, g Gauge, sink results.Sink) (*Runner, error) {
	if cycle == nil {
		return nil, errors.New("measure: cycle required")
	}
	if g == nil {
		return nil, errors.New("measure: gauge required")
	}
	if cfg.Channels <= 0 {
		return nil, errors.New("measure: channels must be > 0")
	}
	return &Runner{cfg: cfg, cycle: cycle, gauge: g, sink: sink}, nil
}

// Run performs iterations cycles around target and returns one record per
// iteration actually started. Motion and gauge failures degrade a record but
// never stop the run; cancellation and sink failures do. The park move to the
// lifted pose is attempted on every return path once the run has begun.
func (r *Runner) Run(ctx context.Context, target *motion.Pose, iterations int) (records []results.Record, err error) {
	if target == nil {
		return nil, config.ErrNoTargetPose
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("measure: iterations must be > 0, got %d", iterations)
	}

	run := results.NewRun(*target, iterations, r.cfg.Channels, r.cfg.DryRun)
	if r.sink != nil {
		if err := r.sink.Begin(run); err != nil {
			return nil, fmt.Errorf("measure: begin run: %w", err)
		}
	}

	l := log.With("run", run.ID)
	l.Info("measure: run started", "target", *target, "iterations", iterations)

	defer func() {
		if perr := r.Park(ctx, *target); perr != nil && err == nil {
			err = perr
		}
	}()

	records = make([]results.Record, 0, iterations)

	for i := 1; i <= iterations; i++ {
		if err := ctx.Err(); err != nil {
			l.Warn("measure: run canceled", "completed", len(records))
			return records, err
		}

		rec := r.Iterate(ctx, i, *target)
		records = append(records, rec)

		l.Info("measure: iteration done",
			"iteration", i,
			"health", rec.Status,
			"stops", rec.Status.StopsReached,
			"channels", rec.Status.ValidChannels,
		)

		if r.sink != nil {
			if err := r.sink.Write(rec); err != nil {
				return records, fmt.Errorf("measure: persist iteration %d: %w", i, err)
			}
		}
	}

	l.Info("measure: run finished", "iterations", len(records))
	return records, nil
}

// Iterate runs one cycle then one averaged gauge read.
func (r *Runner) Iterate(ctx context.Context, i int, target motion.Pose) results.Record {
	res, cycleErr := r.cycle.Run(ctx, target)
	if cycleErr != nil {
		log.Error("measure: cycle failed", "iteration", i, "err", cycleErr)
	}

	rec := results.Record{
		Iteration: i,
		Time:      time.Now(),
		Gauge:     make([]*float64, r.cfg.Channels),
		Stops:     res.Stops,
	}

	var gaugeErr error
	if readable(cycleErr) {
		reading, err := r.gauge.ReadAveraged(ctx)
		if err != nil {
			log.Error("measure: gauge read failed", "iteration", i, "err", err)
			gaugeErr = err
		} else {
			copy(rec.Gauge, reading.Pointers())
		}
	}

	valid := 0
	for _, v := range rec.Gauge {
		if v != nil {
			valid++
		}
	}

	rec.Status = status.Evaluate(status.Outcome{
		CycleErr:      cycleErr,
		GaugeErr:      gaugeErr,
		StopsReached:  res.Reached(),
		ValidChannels: valid,
		WantChannels:  r.cfg.Channels,
	})

	return rec
}

// Park moves to the lifted pose. It runs even when ctx is already canceled.
func (r *Runner) Park(ctx context.Context, target motion.Pose) error {
	pctx := context.WithoutCancel(ctx)
	if r.cfg.ParkTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, r.cfg.ParkTimeout)
		defer cancel()
	}
	lifted := r.cycle.Lifted(target)

	log.Info("measure: parking", "pose", lifted)
	if err := r.cycle.MoveTo(pctx, motion.StopPark, lifted); err != nil {
		log.Error("measure: park failed", "err", err)
		return fmt.Errorf("measure: park: %w", err)
	}
	return nil
}

// readable reports whether the arm is known to be at rest after the cycle.
// A controller-reported failure leaves it stopped; a timeout or cancellation may not.
func readable(cycleErr error) bool {
	if cycleErr == nil {
		return true
	}
	if errors.Is(cycleErr, motion.ErrMotionTimeout) ||
		errors.Is(cycleErr, context.Canceled) ||
		errors.Is(cycleErr, context.DeadlineExceeded) {
		return false
	}
	var me *motion.MotionError
	return errors.As(cycleErr, &me)
}
