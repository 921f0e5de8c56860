// internal/measure/builder.go
package measure

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	cfg "github.com/FrankJIE09/Hans-robot/internal/config"
	"github.com/FrankJIE09/Hans-robot/internal/gauge"
	gmodbus "github.com/FrankJIE09/Hans-robot/internal/gauge/modbus"
	gserial "github.com/FrankJIE09/Hans-robot/internal/gauge/serial"
	gsim "github.com/FrankJIE09/Hans-robot/internal/gauge/sim"
	"github.com/FrankJIE09/Hans-robot/internal/log"
	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/motion/hans"
	msim "github.com/FrankJIE09/Hans-robot/internal/motion/sim"
	"github.com/FrankJIE09/Hans-robot/internal/results"
	"github.com/FrankJIE09/Hans-robot/internal/writer"
	wmodbus "github.com/FrankJIE09/Hans-robot/internal/writer/modbus"
)

// dummy hub: micrometre-level noise around a fixed reading
const (
	dummyJitter = 0.002
	dummyPolls  = 2
)

// DefaultParkTimeout bounds the park move when cycle waits are unbounded.
const DefaultParkTimeout = 2 * time.Minute

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// BuildGauge constructs a gauge session. Assumes config has been validated and normalized.
// With dummy set, the session talks to an in-memory hub instead of the port.
func BuildGauge(g cfg.GaugeConfig, dummy bool, seed int64) (*gauge.Session, error) {
	var open gauge.Opener

	switch {
	case dummy:
		base := make([]float64, g.Channels)
		for i := range base {
			base[i] = 0.5 * float64(i+1)
		}
		open = gsim.NewDevice(seed, dummyJitter, base...).Opener()

	case g.Mode == cfg.ModeModbus:
		open = gmodbus.Opener(gmodbus.Config{
			Port:     g.Port,
			BaudRate: g.BaudRate,
			DataBits: g.DataBits,
			StopBits: g.StopBits,
			Parity:   g.Parity,
			SlaveID:  g.Address,
			Timeout:  ms(g.TimeoutMs),
		})

	default:
		open = gserial.Opener(gserial.Config{
			Port:          g.Port,
			BaudRate:      g.BaudRate,
			DataBits:      g.DataBits,
			StopBits:      g.StopBits,
			Parity:        g.Parity,
			Window:        ms(g.TimeoutMs),
			ResponseBytes: g.ResponseBytes,
		})
	}

	return gauge.New(gauge.Config{
		Address:        g.Address,
		StartRegister:  g.StartRegister,
		Registers:      g.Registers,
		Channels:       g.Channels,
		Attempts:       g.Attempts,
		Settle:         ms(g.SettleMs),
		VerifyChecksum: g.VerifyChecksum,
	}, open)
}

// CycleConfig maps the cycle section onto motion.CycleConfig.
func CycleConfig(c cfg.CycleConfig) (motion.CycleConfig, error) {
	axis, err := motion.ParseAxis(c.LiftAxis)
	if err != nil {
		return motion.CycleConfig{}, err
	}
	if c.LiftOffset == nil || c.Perturbation == nil {
		return motion.CycleConfig{}, errors.New("measure: cycle config not normalized")
	}

	maxWait := ms(c.MaxWaitMs)
	if c.MaxWaitMs < 0 {
		maxWait = 0
	}

	return motion.CycleConfig{
		LiftAxis:     axis,
		LiftOffset:   *c.LiftOffset,
		Perturbation: *c.Perturbation,
		PollInterval: ms(c.PollIntervalMs),
		MaxWait:      maxWait,
		Move: motion.MoveParams{
			Speed:        c.Speed,
			Acceleration: c.Acceleration,
			UCS:          c.UCS,
			TCP:          c.TCP,
			Radius:       c.Radius,
		},
	}, nil
}

// BuildMotion connects to the controller, or creates a simulated arm resting at home.
func BuildMotion(r cfg.RobotConfig, dummy bool, home motion.Pose) (motion.Service, func() error, error) {
	if dummy {
		return msim.NewArm(home, dummyPolls), func() error { return nil }, nil
	}

	c, err := hans.Dial(hans.Config{
		Endpoint: r.Endpoint,
		RobotID:  r.RobotID,
		Timeout:  ms(r.TimeoutMs),
	})
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// BuildSink opens the CSV file and, when configured, the SQLite store and
// the status publisher. It returns the fan-out sink and the paths written to.
func BuildSink(o cfg.OutputConfig, p cfg.PublishConfig, now time.Time) (results.Sink, []string, error) {
	csvSink, path, err := results.CreateCSV(o.Dir, now)
	if err != nil {
		return nil, nil, err
	}
	sinks := results.Multi{csvSink}
	paths := []string{path}

	if o.SQLite != "" {
		store, err := results.OpenStore(o.SQLite)
		if err != nil {
			_ = csvSink.Close()
			return nil, nil, err
		}
		sinks = append(sinks, store)
		paths = append(paths, o.SQLite)
	}

	if p.Endpoint != "" {
		pub, err := BuildPublisher(p)
		if err != nil {
			_ = sinks.Close()
			return nil, nil, err
		}
		sinks = append(sinks, pub)
	}

	return sinks, paths, nil
}

// BuildPublisher connects the status block publisher.
func BuildPublisher(p cfg.PublishConfig) (*writer.StatusSink, error) {
	cli, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: p.Endpoint,
		Timeout:  ms(p.TimeoutMs),
	})
	if err != nil {
		return nil, fmt.Errorf("measure: publish endpoint %s: %w", p.Endpoint, err)
	}

	sink, err := writer.NewStatusSink(writer.Plan{
		Endpoint:     p.Endpoint,
		UnitID:       p.UnitID,
		BaseRegister: p.BaseRegister,
		DeviceName:   p.DeviceName,
	}, cli)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	return sink, nil
}

// Rig is a fully wired runner and everything it needs released afterwards.
type Rig struct {
	Runner  *Runner
	Target  motion.Pose
	Outputs []string

	closers []func() error
}

// Close releases the sinks and the controller connection. The last error wins.
func (r *Rig) Close() error {
	var last error
	for _, fn := range r.closers {
		if err := fn(); err != nil {
			last = err
		}
	}
	return last
}

// Build wires a complete runner from configuration.
// Assumes config has been validated and normalized.
func Build(c *cfg.Config, dummy bool) (*Rig, error) {
	target, err := c.TargetPose.Pose()
	if err != nil {
		return nil, err
	}

	dummy = dummy || c.Robot.Dummy
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	session, err := BuildGauge(c.Gauge, dummy, seed)
	if err != nil {
		return nil, err
	}

	cc, err := CycleConfig(c.Cycle)
	if err != nil {
		return nil, err
	}

	svc, closeMotion, err := BuildMotion(c.Robot, dummy, target)
	if err != nil {
		return nil, err
	}

	cycle, err := motion.NewCycle(svc, cc, rand.New(rand.NewSource(seed)))
	if err != nil {
		_ = closeMotion()
		return nil, err
	}

	sink, paths, err := BuildSink(c.Output, c.Publish, time.Now())
	if err != nil {
		_ = closeMotion()
		return nil, err
	}

	rc := Config{Channels: c.Gauge.Channels, DryRun: dummy}
	if cc.MaxWait == 0 {
		rc.ParkTimeout = DefaultParkTimeout
	}

	r, err := New(rc, cycle, session, sink)
	if err != nil {
		_ = sink.Close()
		_ = closeMotion()
		return nil, err
	}

	log.Debug("measure: built", "dummy", dummy, "gauge_mode", c.Gauge.Mode, "outputs", paths)

	return &Rig{
		Runner:  r,
		Target:  target,
		Outputs: paths,
		closers: []func() error{sink.Close, closeMotion},
	}, nil
}
