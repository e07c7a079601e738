package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/magnetar/internal/config"
	"github.com/papapumpkin/magnetar/internal/ui"
	"github.com/papapumpkin/magnetar/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <graph-file>",
	Short: "Re-rank a graph whenever its file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Float64P("damping", "a", 0, "damping factor in (0, 1]")
	watchCmd.Flags().Float64P("tolerance", "c", 0, "convergence tolerance")
	watchCmd.Flags().IntP("max-iterations", "m", -1, "maximum iterations (0 = unbounded)")
	watchCmd.Flags().Float64("correction-scale", 0, "teleportation correction scale (0.5 reference, 1.0 textbook)")
	watchCmd.Flags().Int("workers", 0, "parallel worker count (0 = all CPUs)")
	watchCmd.Flags().Bool("history", false, "write every intermediate vector to the output file")
	watchCmd.Flags().StringP("output", "o", "", "output file for the result vector")
	watchCmd.Flags().String("run-log", "", "JSONL run log file")
	watchCmd.Flags().String("store", "", "SQLite database to record runs in")
	watchCmd.Flags().Int("top", 20, "number of top pages to store per run")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyRankFlags(cmd, &cfg)
	printer := ui.New(cfg.Verbose)
	topK, _ := cmd.Flags().GetInt("top")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Rank once up front so the watch starts from a fresh result.
	if err := rankOnce(ctx, cfg, printer, args[0], topK); err != nil {
		return err
	}

	w, err := watch.New(args[0])
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Stop()

	printer.Info(fmt.Sprintf("watching %s — ctrl-c to stop", w.File))
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			printer.Info(fmt.Sprintf("%s changed, re-ranking", change.File))
			if err := rankOnce(ctx, cfg, printer, args[0], topK); err != nil {
				// Keep watching: a half-written graph file will parse again
				// on the next change.
				printer.Error(err.Error())
			}
		}
	}
}
