// internal/writer/sink.go
package writer

import (
	"github.com/FrankJIE09/Hans-robot/internal/log"
	"github.com/FrankJIE09/Hans-robot/internal/results"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// StatusSink mirrors every record's status into the published block.
// Publishing is best effort: failures are logged and never stop a run.
type StatusSink struct {
	w   *StatusWriter
	cli endpointClient
}

// NewStatusSink publishes through cli. The sink owns cli and closes it.
func NewStatusSink(plan Plan, cli endpointClient) (*StatusSink, error) {
	w, err := NewStatusWriter(plan, cli)
	if err != nil {
		return nil, err
	}
	return &StatusSink{w: w, cli: cli}, nil
}

// Begin clears the block for the new run.
func (s *StatusSink) Begin(run results.Run) error {
	s.w.needFull = true
	s.publish(status.Snapshot{Health: status.HealthUnknown}, 0)
	return nil
}

func (s *StatusSink) Write(rec results.Record) error {
	s.publish(rec.Status, rec.Iteration)
	return nil
}

func (s *StatusSink) Close() error {
	return s.cli.Close()
}

func (s *StatusSink) publish(snap status.Snapshot, iteration int) {
	if err := s.w.WriteStatus(snap, iteration); err != nil {
		log.Warn("status publish failed",
			"endpoint", s.w.plan.Endpoint,
			"iteration", iteration,
			"err", err,
		)
	}
}
