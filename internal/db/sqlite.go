// Package db archives benchmark sweeps in SQLite so runs can be listed and
// compared after the CSV artifact has been overwritten.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"vdjbench/internal/benchmark"
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store interface defines the methods for persistent sweep history
type Store interface {
	Close() error
	StartRun(run *benchmark.Run) (int64, error)
	AppendRow(runID int64, row benchmark.Row) error
	FinishRun(runID int64, status string, finishedAt time.Time) error
	ListRuns(limit int) ([]benchmark.Run, error)
	LoadRun(id int64) (*benchmark.Run, error)
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		loader TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS run_rows (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		dataset_size INTEGER NOT NULL,
		timed INTEGER NOT NULL,
		min_s REAL,
		median_s REAL,
		mean_s REAL,
		max_s REAL,
		sd_s REAL,
		ci95_s REAL,
		profiled INTEGER NOT NULL,
		alloc_bytes INTEGER,
		peak_alloc_bytes INTEGER,
		degraded INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, dataset_size)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// StartRun records a new run in the running state and returns its ID.
func (s *SQLiteStore) StartRun(run *benchmark.Run) (int64, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = benchmark.StatusRunning
	}
	res, err := s.db.Exec(
		`INSERT INTO runs (label, loader, iterations, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.Label, run.Loader, run.Iterations, run.Status, run.StartedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// AppendRow stores the raw values of one completed dataset size.
func (s *SQLiteStore) AppendRow(runID int64, row benchmark.Row) error {
	var (
		timed, profiled, degraded bool
		st                        benchmark.TimingStats
		alloc, peak               int64
	)
	if row.Timing != nil {
		timed = true
		st = row.Timing.Stats
	}
	if row.Memory != nil {
		profiled = true
		alloc = row.Memory.AllocBytes
		peak = row.Memory.PeakAllocBytes
		degraded = row.Memory.Degraded
	}

	_, err := s.db.Exec(`
		INSERT INTO run_rows (run_id, dataset_size, timed, min_s, median_s, mean_s, max_s, sd_s, ci95_s,
			profiled, alloc_bytes, peak_alloc_bytes, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, row.DatasetSize, timed, st.Min, st.Median, st.Mean, st.Max, st.SD, st.CI95,
		profiled, alloc, peak, degraded,
	)
	if err != nil {
		return fmt.Errorf("failed to insert row for dataset size %d: %w", row.DatasetSize, err)
	}
	return nil
}

// FinishRun sets the final status of a run.
func (s *SQLiteStore) FinishRun(runID int64, status string, finishedAt time.Time) error {
	res, err := s.db.Exec(`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`, status, finishedAt.UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, without their rows.
func (s *SQLiteStore) ListRuns(limit int) ([]benchmark.Run, error) {
	query := `SELECT id, label, loader, iterations, status, started_at, finished_at FROM runs ORDER BY id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []benchmark.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *run)
	}
	return results, rows.Err()
}

// LoadRun returns a run with all of its rows ordered by dataset size.
func (s *SQLiteStore) LoadRun(id int64) (*benchmark.Run, error) {
	row := s.db.QueryRow(`SELECT id, label, loader, iterations, status, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT dataset_size, timed, min_s, median_s, mean_s, max_s, sd_s, ci95_s,
			profiled, alloc_bytes, peak_alloc_bytes, degraded
		FROM run_rows WHERE run_id = ? ORDER BY dataset_size`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                         benchmark.Row
			timed, profiled, degraded bool
			st                        benchmark.TimingStats
			alloc, peak               int64
		)
		if err := rows.Scan(&r.DatasetSize, &timed, &st.Min, &st.Median, &st.Mean, &st.Max, &st.SD, &st.CI95,
			&profiled, &alloc, &peak, &degraded); err != nil {
			return nil, err
		}
		if timed {
			r.Timing = benchmark.NewTimingRecord(st)
		}
		if profiled {
			r.Memory = benchmark.NewMemoryRecord(alloc, peak, degraded)
		}
		run.Rows = append(run.Rows, r)
	}
	return run, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*benchmark.Run, error) {
	var (
		run      benchmark.Run
		finished sql.NullTime
	)
	if err := sc.Scan(&run.ID, &run.Label, &run.Loader, &run.Iterations, &run.Status, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}
