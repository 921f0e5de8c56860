// internal/results/csv.go
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// CSVFileName returns repeatability_results_<YYYYMMDD_HHMMSS>.csv for t.
func CSVFileName(t time.Time) string {
	return "repeatability_results_" + t.Format("20060102_150405") + ".csv"
}

// CSVSink writes one row per iteration. Absent values are empty cells.
// Rows are flushed as they are written so an interrupted run keeps its data.
type CSVSink struct {
	w        *csv.Writer
	c        io.Closer
	channels int
	began    bool
}

// NewCSVSink writes to w. It does not close w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

// CreateCSV creates dir if needed and opens a new timestamped file inside it.
func CreateCSV(dir string, now time.Time) (*CSVSink, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("results: mkdir: %w", err)
	}

	path := filepath.Join(dir, CSVFileName(now))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("results: create: %w", err)
	}

	s := NewCSVSink(f)
	s.c = f
	return s, path, nil
}

// Header returns the column names for a gauge with the given channel count.
func Header(channels int) []string {
	h := []string{"Iteration", "Health", "Error Code"}
	for i := 1; i <= channels; i++ {
		h = append(h, fmt.Sprintf("Gauge_%d Reading", i))
	}
	for _, label := range stopLabels {
		for i := 1; i <= motion.NumAxes; i++ {
			h = append(h, fmt.Sprintf("%s Commanded Pose %d", label, i))
		}
		for i := 1; i <= len(motion.Joints{}); i++ {
			h = append(h, fmt.Sprintf("%s Joint Angle %d", label, i))
		}
		for i := 1; i <= motion.NumAxes; i++ {
			h = append(h, fmt.Sprintf("%s Position Orientation %d", label, i))
		}
	}
	return h
}

func (s *CSVSink) Begin(run Run) error {
	if s.began {
		return errors.New("results: csv: run already started")
	}
	s.began = true
	s.channels = run.Channels

	if err := s.w.Write(Header(run.Channels)); err != nil {
		return fmt.Errorf("results: csv: header: %w", err)
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Write(rec Record) error {
	if !s.began {
		return errors.New("results: csv: write before begin")
	}

	row := []string{
		strconv.Itoa(rec.Iteration),
		status.HealthName(rec.Status.Health),
		strconv.Itoa(rec.Status.LastErrorCode),
	}

	for i := 0; i < s.channels; i++ {
		var v *float64
		if i < len(rec.Gauge) {
			v = rec.Gauge[i]
		}
		row = append(row, formatOptional(v))
	}

	for _, stop := range rec.Stops {
		row = appendPose(row, stop.Commanded)
		if stop.Telemetry != nil {
			j := stop.Telemetry.Joints
			row = appendValues(row, j[:])
			tcp := stop.Telemetry.TCP.Array()
			row = appendValues(row, tcp[:])
		} else {
			row = appendBlank(row, len(motion.Joints{})+motion.NumAxes)
		}
	}

	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("results: csv: row %d: %w", rec.Iteration, err)
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.c != nil {
		if cerr := s.c.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.c = nil
	}
	return err
}

//
// ---- helpers ----
//

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func appendPose(row []string, p *motion.Pose) []string {
	if p == nil {
		return appendBlank(row, motion.NumAxes)
	}
	arr := p.Array()
	return appendValues(row, arr[:])
}

func appendValues(row []string, vs []float64) []string {
	for _, v := range vs {
		row = append(row, formatFloat(v))
	}
	return row
}

func appendBlank(row []string, n int) []string {
	for i := 0; i < n; i++ {
		row = append(row, "")
	}
	return row
}
