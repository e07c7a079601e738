package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/magnetar/internal/config"
	"github.com/papapumpkin/magnetar/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded runs, or show one run's top pages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().String("store", "", "SQLite database holding run history")
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StoreFile = v
	}
	if cfg.StoreFile == "" {
		return fmt.Errorf("no run store configured; pass --store or set store_file")
	}

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.StoreFile)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad run id %q: %w", args[0], err)
		}
		return showTopPages(ctx, db, runID)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-5s %-30s %8s %10s %6s %10s %9s  %s\n",
		"ID", "GRAPH", "PAGES", "EDGES", "ITERS", "CONVERGED", "DURATION", "WHEN")
	for _, r := range recs {
		fmt.Printf("%-5d %-30s %8d %10d %6d %10t %9s  %s\n",
			r.ID, r.Graph, r.Pages, r.Edges, r.Iterations, r.Converged,
			r.Duration, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func showTopPages(ctx context.Context, db *store.Store, runID int64) error {
	prs, err := db.TopPages(ctx, runID)
	if err != nil {
		return err
	}
	if len(prs) == 0 {
		fmt.Printf("run %d has no stored pages\n", runID)
		return nil
	}
	fmt.Printf("%-5s %10s %12s\n", "#", "PAGE", "RANK")
	for i, pr := range prs {
		fmt.Printf("%-5d %10d %12.6f\n", i+1, pr.Page, pr.Rank)
	}
	return nil
}
