package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pluginverify/problems"
)

// Store persists verification runs in a SQLite database so results of
// repeated runs can be compared and queried.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a results database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS verdicts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			plugin TEXT NOT NULL,
			host TEXT NOT NULL,
			state TEXT NOT NULL,
			failure_reason TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS problems (
			run_id TEXT NOT NULL REFERENCES runs(id),
			plugin TEXT NOT NULL,
			host TEXT NOT NULL,
			kind TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// SaveRun stores all verdicts of one run and returns the run id.
func (s *Store) SaveRun(verdicts []problems.Verdict) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		runID, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, v := range verdicts {
		if _, err := tx.Exec(
			"INSERT INTO verdicts (run_id, plugin, host, state, failure_reason) VALUES (?, ?, ?, ?, ?)",
			runID, v.Plugin, v.Host, v.State.String(), v.FailureReason,
		); err != nil {
			return "", fmt.Errorf("inserting verdict: %w", err)
		}
		for _, p := range v.Problems {
			if _, err := tx.Exec(
				"INSERT INTO problems (run_id, plugin, host, kind, description) VALUES (?, ?, ?, ?, ?)",
				runID, v.Plugin, v.Host, string(p.Kind()), p.Description(),
			); err != nil {
				return "", fmt.Errorf("inserting problem: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// CountVerdicts returns how many verdicts a stored run has.
func (s *Store) CountVerdicts(runID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM verdicts WHERE run_id = ?", runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting verdicts: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
