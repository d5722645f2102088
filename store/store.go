// ════════════════════════════════════════════════════════════════════════════════════════════════
// Result Persistence
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: SQLite Run Archive
//
// Description:
//   Persists one row per measurement run (calibration, topology, trace digest) plus one row
//   per timed-operation result so runs on the same host stay comparable over time.  All of
//   this is cold-path work after the measured window closes; nothing here is called while
//   timestamps are being taken.
//
//   Writes batch into a single transaction per run: either the whole run lands or none of
//   it does.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dpreed/clock-speed/debug"
	"github.com/dpreed/clock-speed/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// DATA MODEL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// RunInfo captures the per-run context that makes result rows interpretable.
type RunInfo struct {
	StartedAt      int64  // unix seconds
	Host           string // hostname the run executed on
	CPUList        string // cpu list the workers were pinned to
	Source         string // calibration source ("perf", "cntfrq", "wall", ...)
	Mult           uint32 // cycles→ns conversion multiplier
	Shift          uint32 // cycles→ns conversion shift
	OverheadCycles float64
	TraceDigest    string // hex digest of the exported trace, "" when not exported
}

// Result is one timed operation's summary statistics.
type Result struct {
	Label        string
	Samples      uint64
	MeanCycles   float64
	StdDevCycles float64
	MeanNanos    float64
}

// Store wraps the archive database handle.
type Store struct {
	db *sql.DB
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// OPEN / CLOSE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Open opens (creating if needed) the archive at path and readies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive connection failed: %w", err)
	}

	// The archive sees a handful of rows per run; trade durability knobs
	// for never stalling the driver on fsync.
	pragmas := []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at     INTEGER NOT NULL,
		host           TEXT NOT NULL,
		cpus           TEXT NOT NULL,
		counter_src    TEXT NOT NULL,
		counter_mult   INTEGER NOT NULL,
		counter_shift  INTEGER NOT NULL,
		overhead_cyc   REAL NOT NULL,
		trace_digest   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id     INTEGER NOT NULL,
		seq        INTEGER NOT NULL,
		label      TEXT NOT NULL,
		samples    INTEGER NOT NULL,
		mean_cyc   REAL NOT NULL,
		stddev_cyc REAL NOT NULL,
		mean_ns    REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	) WITHOUT ROWID;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RUN ARCHIVAL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// SaveRun writes the run row and all of its results in one transaction and
// returns the new run's id.  Partial runs never land: any failure rolls the
// whole batch back.
func (s *Store) SaveRun(info RunInfo, results []Result) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin run transaction: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, host, cpus, counter_src, counter_mult, counter_shift, overhead_cyc, trace_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.StartedAt, info.Host, info.CPUList, info.Source,
		int64(info.Mult), int64(info.Shift), info.OverheadCycles, info.TraceDigest,
	)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to insert run row: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (run_id, seq, label, samples, mean_cyc, stddev_cyc, mean_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare result insert: %w", err)
	}
	for seq, r := range results {
		if _, err := stmt.Exec(runID, seq, r.Label, int64(r.Samples), r.MeanCycles, r.StdDevCycles, r.MeanNanos); err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert result %q: %w", r.Label, err)
		}
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	debug.DropMessage("ARCHIVE", "run "+utils.Itoa(runID)+" saved with "+utils.Itoa(int64(len(results)))+" results")
	return runID, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// READBACK
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// LastRun returns the most recently archived run row.
func (s *Store) LastRun() (int64, RunInfo, error) {
	var (
		id          int64
		info        RunInfo
		mult, shift int64
	)
	err := s.db.QueryRow(`
		SELECT id, started_at, host, cpus, counter_src, counter_mult, counter_shift, overhead_cyc, trace_digest
		FROM runs ORDER BY id DESC LIMIT 1`).
		Scan(&id, &info.StartedAt, &info.Host, &info.CPUList, &info.Source, &mult, &shift, &info.OverheadCycles, &info.TraceDigest)
	if err != nil {
		return 0, RunInfo{}, fmt.Errorf("failed to load last run: %w", err)
	}
	info.Mult = uint32(mult)
	info.Shift = uint32(shift)
	return id, info, nil
}

// Results returns a run's result rows in the order they were saved.
func (s *Store) Results(runID int64) ([]Result, error) {
	rows, err := s.db.Query(`
		SELECT label, samples, mean_cyc, stddev_cyc, mean_ns
		FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r       Result
			samples int64
		)
		if err := rows.Scan(&r.Label, &samples, &r.MeanCycles, &r.StdDevCycles, &r.MeanNanos); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Samples = uint64(samples)
		out = append(out, r)
	}
	return out, rows.Err()
}
