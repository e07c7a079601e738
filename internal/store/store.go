// Package store persists solver runs to a local SQLite database: the run
// parameters and outcome, plus the top-ranked pages of each run. It backs
// the `magnetar runs` command so past results stay queryable without keeping
// full vectors around.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on every open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    graph       TEXT NOT NULL,
    pages       INTEGER NOT NULL,
    edges       INTEGER NOT NULL,
    damping     REAL NOT NULL,
    tolerance   REAL NOT NULL,
    iterations  INTEGER NOT NULL,
    converged   INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS top_pages (
    run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    page     INTEGER NOT NULL,
    rank     REAL NOT NULL,
    PRIMARY KEY (run_id, position)
);
`

// RunRecord describes one stored solver run.
type RunRecord struct {
	ID         int64
	Graph      string
	Pages      int
	Edges      int
	Damping    float64
	Tolerance  float64
	Iterations int
	Converged  bool
	Duration   time.Duration
	CreatedAt  time.Time
}

// PageRank is one entry of a run's top-page list.
type PageRank struct {
	Page int
	Rank float64
}

// Store wraps a SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode and
// busy timeout, and creates the schema tables if they do not exist.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids SQLITE_BUSY
	// contention between pooled connections that each need their own PRAGMA
	// setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run record along with its topK highest-ranked pages and
// returns the new run's ID.
func (s *Store) SaveRun(ctx context.Context, rec RunRecord, vector []float64, topK int) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (graph, pages, edges, damping, tolerance, iterations, converged, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Graph, rec.Pages, rec.Edges, rec.Damping, rec.Tolerance,
		rec.Iterations, rec.Converged, rec.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}

	for pos, pr := range topPages(vector, topK) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO top_pages (run_id, position, page, rank) VALUES (?, ?, ?, ?)`,
			runID, pos, pr.Page, pr.Rank); err != nil {
			return 0, fmt.Errorf("store: insert top page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, graph, pages, edges, damping, tolerance, iterations, converged, duration_ms, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durMs int64
		if err := rows.Scan(&rec.ID, &rec.Graph, &rec.Pages, &rec.Edges,
			&rec.Damping, &rec.Tolerance, &rec.Iterations, &rec.Converged,
			&durMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		rec.Duration = time.Duration(durMs) * time.Millisecond
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// TopPages returns the stored top-page list for a run, best first.
func (s *Store) TopPages(ctx context.Context, runID int64) ([]PageRank, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page, rank FROM top_pages WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: top pages: %w", err)
	}
	defer rows.Close()

	var prs []PageRank
	for rows.Next() {
		var pr PageRank
		if err := rows.Scan(&pr.Page, &pr.Rank); err != nil {
			return nil, fmt.Errorf("store: scan top page: %w", err)
		}
		prs = append(prs, pr)
	}
	return prs, rows.Err()
}

// topPages returns the k highest-ranked pages of vector, best first.
func topPages(vector []float64, k int) []PageRank {
	prs := make([]PageRank, len(vector))
	for i, r := range vector {
		prs[i] = PageRank{Page: i, Rank: r}
	}
	sort.Slice(prs, func(i, j int) bool {
		if prs[i].Rank != prs[j].Rank {
			return prs[i].Rank > prs[j].Rank
		}
		return prs[i].Page < prs[j].Page
	})
	if k > 0 && k < len(prs) {
		prs = prs[:k]
	}
	return prs
}
