// Package catalog maintains a TOML catalog of graph datasets that magnetar
// has seen: where they live, their measured shape, and when they were last
// ranked. The catalog lets repeat runs refer to graphs by name and keeps
// manual annotations across automatic refreshes.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath is the conventional location for the graph catalog.
const DefaultPath = ".magnetar/catalog.toml"

// Entry describes one graph dataset. Notes is a manual annotation preserved
// across refreshes; everything else is derived from the graph file and the
// latest run.
type Entry struct {
	Name       string    `toml:"name"`
	Path       string    `toml:"path"`
	Pages      int       `toml:"pages"`
	Edges      int       `toml:"edges"`
	Dangling   int       `toml:"dangling"`
	Iterations int       `toml:"iterations,omitempty"`
	LastRanked time.Time `toml:"last_ranked,omitempty"`
	Stale      bool      `toml:"stale,omitempty"`
	Notes      string    `toml:"notes,omitempty"`
}

// Catalog is the full dataset listing.
type Catalog struct {
	Datasets []Entry `toml:"datasets"`
}

// Load reads a catalog from the given path. If the file does not exist, it
// returns an empty catalog and no error, allowing callers to proceed.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}

	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	return &c, nil
}

// Save writes the catalog to the given path, creating parent directories as
// needed.
func Save(path string, c *Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("catalog: creating directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("catalog: marshaling: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("catalog: writing %s: %w", path, err)
	}
	return nil
}

// Find returns the entry with the given name, or nil.
func (c *Catalog) Find(name string) *Entry {
	for i := range c.Datasets {
		if c.Datasets[i].Name == name {
			return &c.Datasets[i]
		}
	}
	return nil
}

// Upsert inserts or replaces an entry by name. An existing entry's Notes
// field is carried forward when the replacement leaves it empty.
func (c *Catalog) Upsert(e Entry) {
	if cur := c.Find(e.Name); cur != nil {
		if e.Notes == "" {
			e.Notes = cur.Notes
		}
		*cur = e
		return
	}
	c.Datasets = append(c.Datasets, e)
}

// Merge combines freshly scanned entries with an existing catalog,
// preserving manual annotations. Auto-derived fields from scanned always
// take precedence. Entries present in existing but absent from scanned are
// marked stale rather than deleted.
func Merge(existing, scanned *Catalog) *Catalog {
	merged := &Catalog{Datasets: make([]Entry, 0, len(scanned.Datasets)+len(existing.Datasets))}

	seen := make(map[string]bool, len(scanned.Datasets))
	for _, e := range scanned.Datasets {
		seen[e.Name] = true
		if cur := existing.Find(e.Name); cur != nil && e.Notes == "" {
			e.Notes = cur.Notes
		}
		merged.Datasets = append(merged.Datasets, e)
	}

	for _, e := range existing.Datasets {
		if seen[e.Name] {
			continue
		}
		e.Stale = true
		merged.Datasets = append(merged.Datasets, e)
	}
	return merged
}
