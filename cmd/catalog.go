package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/magnetar/internal/catalog"
	"github.com/papapumpkin/magnetar/internal/config"
	"github.com/papapumpkin/magnetar/internal/webgraph"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the graph datasets magnetar has ranked",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().Bool("refresh", false, "re-scan dataset files and update their stats")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}

	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		cat = refreshCatalog(cat)
		if err := catalog.Save(cfg.CatalogFile, cat); err != nil {
			return err
		}
	}

	if len(cat.Datasets) == 0 {
		fmt.Println("catalog is empty — run `magnetar rank <graph>` first")
		return nil
	}

	fmt.Printf("%-20s %10s %12s %9s %6s  %s\n", "NAME", "PAGES", "EDGES", "DANGLING", "ITERS", "PATH")
	for _, e := range cat.Datasets {
		name := e.Name
		if e.Stale {
			name += " (stale)"
		}
		fmt.Printf("%-20s %10d %12d %9d %6d  %s\n",
			name, e.Pages, e.Edges, e.Dangling, e.Iterations, e.Path)
	}
	return nil
}

// refreshCatalog re-reads every dataset file still on disk and merges the
// fresh stats back in, marking the datasets that have gone missing.
func refreshCatalog(existing *catalog.Catalog) *catalog.Catalog {
	scanned := &catalog.Catalog{}
	for _, e := range existing.Datasets {
		g, err := webgraph.Load(e.Path)
		if err != nil {
			continue // missing or unreadable; Merge marks it stale
		}
		e.Pages = g.Pages
		e.Edges = len(g.Edges)
		e.Dangling = g.Dangling()
		e.Stale = false
		scanned.Datasets = append(scanned.Datasets, e)
	}
	return catalog.Merge(existing, scanned)
}
