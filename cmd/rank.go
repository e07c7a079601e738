package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/magnetar/internal/catalog"
	"github.com/papapumpkin/magnetar/internal/config"
	"github.com/papapumpkin/magnetar/internal/output"
	"github.com/papapumpkin/magnetar/internal/runlog"
	"github.com/papapumpkin/magnetar/internal/solver"
	"github.com/papapumpkin/magnetar/internal/store"
	"github.com/papapumpkin/magnetar/internal/ui"
	"github.com/papapumpkin/magnetar/internal/webgraph"
)

var rankCmd = &cobra.Command{
	Use:   "rank <graph-file>",
	Short: "Compute the PageRank vector of an edge-list graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().Float64P("damping", "a", 0, "damping factor in (0, 1]")
	rankCmd.Flags().Float64P("tolerance", "c", 0, "convergence tolerance")
	rankCmd.Flags().IntP("max-iterations", "m", -1, "maximum iterations (0 = unbounded)")
	rankCmd.Flags().Float64("correction-scale", 0, "teleportation correction scale (0.5 reference, 1.0 textbook)")
	rankCmd.Flags().Int("workers", 0, "parallel worker count (0 = all CPUs)")
	rankCmd.Flags().Bool("history", false, "write every intermediate vector to the output file")
	rankCmd.Flags().StringP("output", "o", "", "output file for the result vector")
	rankCmd.Flags().String("run-log", "", "JSONL run log file")
	rankCmd.Flags().String("store", "", "SQLite database to record the run in")
	rankCmd.Flags().Int("top", 20, "number of top pages to store per run")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyRankFlags(cmd, &cfg)
	printer := ui.New(cfg.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	topK, _ := cmd.Flags().GetInt("top")
	return rankOnce(ctx, cfg, printer, args[0], topK)
}

// applyRankFlags applies CLI flag values to the loaded config.
func applyRankFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetFloat64("damping"); v > 0 {
		cfg.Damping = v
	}
	if v, _ := cmd.Flags().GetFloat64("tolerance"); v > 0 {
		cfg.Tolerance = v
	}
	if v, _ := cmd.Flags().GetInt("max-iterations"); v >= 0 {
		cfg.MaxIterations = v
	}
	if v, _ := cmd.Flags().GetFloat64("correction-scale"); v > 0 {
		cfg.CorrectionScale = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	if v, _ := cmd.Flags().GetBool("history"); v {
		cfg.History = true
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.OutputFile = v
	}
	if v, _ := cmd.Flags().GetString("run-log"); v != "" {
		cfg.RunLogFile = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StoreFile = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
}

// rankOnce runs the full pipeline for one graph file: load, build the
// transition matrix, solve, write outputs, and record the run.
func rankOnce(ctx context.Context, cfg config.Config, printer *ui.Printer, graphPath string, topK int) error {
	printer.Section("Reading graph from file")
	g, err := webgraph.Load(graphPath)
	if err != nil {
		return err
	}
	dangling := g.Dangling()
	printer.GraphStats(g.Pages, len(g.Edges), dangling)

	printer.Section("Running with parameters")
	printer.Parameters(cfg.Damping, cfg.Tolerance, cfg.MaxIterations)

	matrix, err := webgraph.Transition(g)
	if err != nil {
		return err
	}

	s, err := solver.New(matrix, webgraph.UniformVector(g.Pages), solver.Options{
		Damping:         cfg.Damping,
		Tolerance:       cfg.Tolerance,
		MaxIterations:   cfg.MaxIterations,
		CheckPeriod:     3,
		CorrectionScale: cfg.CorrectionScale,
		Workers:         cfg.Workers,
		History:         cfg.History,
	})
	if err != nil {
		return err
	}
	s.Sink = output.NewFileSink(cfg.OutputFile)
	if cfg.Verbose {
		s.Progress = printer.Iteration
	}
	if cfg.RunLogFile != "" {
		em, err := runlog.NewEmitter(cfg.RunLogFile)
		if err != nil {
			return err
		}
		defer em.Close()
		s.Log = em
	}

	printer.Section("Starting iterations")
	start := time.Now()
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	printer.Done(res.Iterations, res.Converged)
	printer.Info(fmt.Sprintf("result written to %s (%s)", cfg.OutputFile, elapsed.Round(time.Millisecond)))

	if cfg.StoreFile != "" {
		if err := recordRun(ctx, cfg, g, res, graphPath, elapsed, topK); err != nil {
			return err
		}
	}
	return updateCatalog(cfg, g, res, graphPath, dangling)
}

func recordRun(ctx context.Context, cfg config.Config, g *webgraph.Graph, res *solver.Result, graphPath string, elapsed time.Duration, topK int) error {
	db, err := store.Open(ctx, cfg.StoreFile)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.SaveRun(ctx, store.RunRecord{
		Graph:      graphPath,
		Pages:      g.Pages,
		Edges:      len(g.Edges),
		Damping:    cfg.Damping,
		Tolerance:  cfg.Tolerance,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Duration:   elapsed,
	}, res.Vector, topK)
	return err
}

func updateCatalog(cfg config.Config, g *webgraph.Graph, res *solver.Result, graphPath string, dangling int) error {
	if cfg.CatalogFile == "" {
		return nil
	}
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	cat.Upsert(catalog.Entry{
		Name:       datasetName(graphPath),
		Path:       graphPath,
		Pages:      g.Pages,
		Edges:      len(g.Edges),
		Dangling:   dangling,
		Iterations: res.Iterations,
		LastRanked: time.Now().UTC(),
	})
	return catalog.Save(cfg.CatalogFile, cat)
}

// datasetName derives a catalog name from the graph filename.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
