// Package history records completed surveys in a SQLite database so earlier
// runs of a program can be listed and compared.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/zegevlier/infi-aoc-2024/pkg/sky"
)

var log = commonlog.GetLogger("cloudcal.history")

// ErrNotFound indicates no run matched the query
var ErrNotFound = errors.New("run not found")

// Run is one recorded survey.
type Run struct {
	ID           string
	ProgramHash  string
	Calibration  int
	Clouds       int
	LargestCloud int
	Workers      int
	StartedAt    time.Time
	Duration     time.Duration
}

// Store handles SQLite storage for runs
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the run database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		program_hash TEXT NOT NULL,
		calibration INTEGER NOT NULL,
		clouds INTEGER NOT NULL,
		largest_cloud INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS runs_by_program ON runs (program_hash, started_at)")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a completed survey and returns the new run.
func (s *Store) Record(report *sky.Report) (*Run, error) {
	run := &Run{
		ID:           uuid.New().String(),
		ProgramHash:  report.ProgramHash,
		Calibration:  report.Calibration,
		Clouds:       report.Clouds,
		LargestCloud: report.LargestCloud,
		Workers:      report.Workers,
		StartedAt:    report.StartedAt,
		Duration:     report.Duration().Round(time.Millisecond),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO runs (id, program_hash, calibration, clouds, largest_cloud, workers, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProgramHash, run.Calibration, run.Clouds, run.LargestCloud,
		run.Workers, run.StartedAt.UnixNano(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	log.Infof("recorded run %s in %s", run.ID, s.path)
	return run, nil
}

const selectRuns = `SELECT id, program_hash, calibration, clouds, largest_cloud, workers, started_at, duration_ms FROM runs`

// List returns up to limit runs, newest first. A limit <= 0 returns every run.
func (s *Store) List(limit int) ([]Run, error) {
	query := selectRuns + " ORDER BY started_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recent run of the program with the given hash.
func (s *Store) Latest(programHash string) (*Run, error) {
	row := s.db.QueryRow(
		selectRuns+" WHERE program_hash = ? ORDER BY started_at DESC, rowid DESC LIMIT 1",
		programHash,
	)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run        Run
		startedAt  int64
		durationMS int64
	)
	err := sc.Scan(&run.ID, &run.ProgramHash, &run.Calibration, &run.Clouds,
		&run.LargestCloud, &run.Workers, &startedAt, &durationMS)
	if err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
