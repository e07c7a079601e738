package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// testStore creates a temporary SQLite store and registers cleanup.
func testStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and tables", func(t *testing.T) {
		t.Parallel()
		s := testStore(t)

		var mode string
		if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("query journal_mode: %v", err)
		}
		if mode != "wal" {
			t.Errorf("journal_mode = %q, want %q", mode, "wal")
		}

		tables := map[string]bool{"runs": false, "top_pages": false}
		rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type='table'")
		if err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				t.Fatalf("scan table name: %v", err)
			}
			tables[name] = true
		}
		for name, found := range tables {
			if !found {
				t.Errorf("table %q not created", name)
			}
		}
	})

	t.Run("reopen is idempotent", func(t *testing.T) {
		t.Parallel()
		dbPath := filepath.Join(t.TempDir(), "runs.db")
		ctx := context.Background()

		s1, err := Open(ctx, dbPath)
		if err != nil {
			t.Fatalf("first Open: %v", err)
		}
		if _, err := s1.SaveRun(ctx, RunRecord{Graph: "g"}, []float64{1}, 1); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		if err := s1.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		s2, err := Open(ctx, dbPath)
		if err != nil {
			t.Fatalf("second Open: %v", err)
		}
		defer s2.Close()
		recs, err := s2.ListRuns(ctx, 10)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(recs) != 1 {
			t.Errorf("expected 1 run after reopen, got %d", len(recs))
		}
	})
}

func TestSaveRun_RoundTrip(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	rec := RunRecord{
		Graph:      "web-small.txt",
		Pages:      4,
		Edges:      6,
		Damping:    0.85,
		Tolerance:  1e-6,
		Iterations: 42,
		Converged:  true,
		Duration:   1500 * time.Millisecond,
	}
	vector := []float64{0.1, 0.4, 0.2, 0.3}

	id, err := s.SaveRun(ctx, rec, vector, 3)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == 0 {
		t.Fatal("SaveRun returned id 0")
	}

	recs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(recs))
	}
	got := recs[0]
	if got.ID != id || got.Graph != rec.Graph || got.Pages != rec.Pages || got.Edges != rec.Edges {
		t.Errorf("run = %+v, want fields of %+v", got, rec)
	}
	if got.Damping != rec.Damping || got.Tolerance != rec.Tolerance {
		t.Errorf("parameters = %v/%v, want %v/%v", got.Damping, got.Tolerance, rec.Damping, rec.Tolerance)
	}
	if got.Iterations != rec.Iterations || !got.Converged {
		t.Errorf("outcome = %d/%v, want %d/true", got.Iterations, got.Converged, rec.Iterations)
	}
	if got.Duration != rec.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, rec.Duration)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	pages, err := s.TopPages(ctx, id)
	if err != nil {
		t.Fatalf("TopPages: %v", err)
	}
	want := []PageRank{{Page: 1, Rank: 0.4}, {Page: 3, Rank: 0.3}, {Page: 2, Rank: 0.2}}
	if len(pages) != len(want) {
		t.Fatalf("expected %d top pages, got %d", len(want), len(pages))
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("top page %d = %+v, want %+v", i, pages[i], want[i])
		}
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := RunRecord{Graph: "g", Iterations: i}
		if _, err := s.SaveRun(ctx, rec, nil, 0); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	recs, err := s.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].ID >= recs[i-1].ID {
			t.Errorf("runs out of order: id %d before %d", recs[i-1].ID, recs[i].ID)
		}
	}
	if recs[0].Iterations != 4 {
		t.Errorf("newest run Iterations = %d, want 4", recs[0].Iterations)
	}
}

func TestTopPages_UnknownRun(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	pages, err := s.TopPages(context.Background(), 999)
	if err != nil {
		t.Fatalf("TopPages: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages for unknown run, got %d", len(pages))
	}
}

func TestTopPagesHelper(t *testing.T) {
	t.Parallel()

	t.Run("orders by rank then page", func(t *testing.T) {
		t.Parallel()
		got := topPages([]float64{0.2, 0.5, 0.2, 0.1}, 0)
		want := []PageRank{{1, 0.5}, {0, 0.2}, {2, 0.2}, {3, 0.1}}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("truncates to k", func(t *testing.T) {
		t.Parallel()
		if got := topPages([]float64{3, 1, 2}, 2); len(got) != 2 || got[0].Page != 0 || got[1].Page != 2 {
			t.Errorf("topPages = %+v", got)
		}
	})

	t.Run("k larger than vector", func(t *testing.T) {
		t.Parallel()
		if got := topPages([]float64{1, 2}, 10); len(got) != 2 {
			t.Errorf("expected 2 entries, got %d", len(got))
		}
	})
}
