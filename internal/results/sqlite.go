// internal/results/sqlite.go
package results

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps every run in one SQLite database.
// Uses WAL mode so a run can be inspected while it is still writing.
type Store struct {
	db    *sql.DB
	runID string
}

// OpenStore creates or opens the database at path and applies the schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("results: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: connect database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("results: %q: %w", p, err)
		}
	}
	return nil
}

// DB returns the underlying handle for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Begin(run Run) error {
	if run.ID == "" {
		return errors.New("results: sqlite: run id required")
	}
	target, err := json.Marshal(run.Target.Array())
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, started_at, target, iterations, channels, dry_run) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		string(target),
		run.Iterations,
		run.Channels,
		run.DryRun,
	)
	if err != nil {
		return fmt.Errorf("results: sqlite: insert run: %w", err)
	}

	s.runID = run.ID
	return nil
}

type stopRow struct {
	Commanded *[motion.NumAxes]float64 `json:"commanded"`
	Joints    *motion.Joints           `json:"joints"`
	TCP       *[motion.NumAxes]float64 `json:"tcp"`
}

func (s *Store) Write(rec Record) error {
	if s.runID == "" {
		return errors.New("results: sqlite: write before begin")
	}

	gauge, err := json.Marshal(rec.Gauge)
	if err != nil {
		return err
	}

	stops := make([]*stopRow, motion.NumStops)
	for i, st := range rec.Stops {
		if st.Commanded == nil && st.Telemetry == nil {
			continue
		}
		row := &stopRow{}
		if st.Commanded != nil {
			arr := st.Commanded.Array()
			row.Commanded = &arr
		}
		if st.Telemetry != nil {
			j := st.Telemetry.Joints
			tcp := st.Telemetry.TCP.Array()
			row.Joints = &j
			row.TCP = &tcp
		}
		stops[i] = row
	}
	stopsJSON, err := json.Marshal(stops)
	if err != nil {
		return err
	}

	at := rec.Time
	if at.IsZero() {
		at = time.Now()
	}

	_, err = s.db.Exec(
		`INSERT INTO iterations (run_id, iteration, recorded_at, health, error_code, gauge, stops) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.runID,
		rec.Iteration,
		at.UTC().Format(time.RFC3339Nano),
		status.HealthName(rec.Status.Health),
		rec.Status.LastErrorCode,
		string(gauge),
		string(stopsJSON),
	)
	if err != nil {
		return fmt.Errorf("results: sqlite: insert iteration %d: %w", rec.Iteration, err)
	}
	return nil
}

// HealthCounts returns how many iterations of a run ended in each health state.
func (s *Store) HealthCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT health, COUNT(*) FROM iterations WHERE run_id = ? GROUP BY health`, runID)
	if err != nil {
		return nil, fmt.Errorf("results: sqlite: query: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var h string
		var n int
		if err := rows.Scan(&h, &n); err != nil {
			return nil, err
		}
		out[h] = n
	}
	return out, rows.Err()
}

// RunSummary is one stored run and how many of its iterations were recorded.
type RunSummary struct {
	ID         string
	StartedAt  string
	Iterations int
	Recorded   int
	DryRun     bool
}

// Runs lists stored runs, most recent first. A limit <= 0 lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.iterations, COUNT(i.iteration), r.dry_run
		FROM runs r LEFT JOIN iterations i ON i.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("results: sqlite: query: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Iterations, &r.Recorded, &r.DryRun); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
