// Package history persists analysis run summaries in a local SQLite
// database so CI pipelines can track score drift between runs.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/classlens/classlens/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	ts          INTEGER NOT NULL,
	index_path  TEXT NOT NULL,
	score       INTEGER NOT NULL,
	configs     INTEGER NOT NULL,
	findings    INTEGER NOT NULL,
	critical    INTEGER NOT NULL,
	diagnostics INTEGER NOT NULL,
	incomplete  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_ts ON runs (ts DESC);
`

// Run is one persisted analysis run summary.
type Run struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	IndexPath   string    `json:"index_path"`
	Score       int       `json:"score"`
	Configs     int       `json:"configs"`
	Findings    int       `json:"findings"`
	Critical    int       `json:"critical"`
	Diagnostics int       `json:"diagnostics"`
	Incomplete  bool      `json:"incomplete"`
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores one completed run.
func (s *Store) Record(runID, indexPath string, res *engine.Result, at time.Time) error {
	critical := 0
	for _, f := range res.Findings {
		if f.Severity == engine.SeverityCritical {
			critical++
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, ts, index_path, score, configs, findings, critical, diagnostics, incomplete)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		at.UTC().Unix(),
		indexPath,
		res.Score,
		len(res.Analysis.Configs),
		len(res.Findings),
		critical,
		len(res.Diagnostics),
		boolToInt(res.Analysis.Incomplete),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, ts, index_path, score, configs, findings, critical, diagnostics, incomplete
		 FROM runs ORDER BY ts DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var ts int64
		var incomplete int
		if err := rows.Scan(&r.ID, &ts, &r.IndexPath, &r.Score, &r.Configs,
			&r.Findings, &r.Critical, &r.Diagnostics, &incomplete); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0).UTC()
		r.Incomplete = incomplete != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
