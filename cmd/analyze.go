package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PinjariAbdul/smart-task-analyser/internal/batchfile"
	"github.com/PinjariAbdul/smart-task-analyser/internal/telemetry"
	"github.com/PinjariAbdul/smart-task-analyser/internal/ui"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Score and rank every task in one or more batch files",
	Long: `Loads each batch file (JSON, YAML or TOML), validates it, and prints
its tasks ranked by priority score with an explanation per task.

Several files are analyzed concurrently; output keeps argument order.
With --watch, files are re-analyzed whenever they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	addRunFlags(analyzeCmd)
	analyzeCmd.Flags().Bool("json", false, "print response bodies as JSON lines")
	analyzeCmd.Flags().BoolP("watch", "w", false, "re-analyze files when they change")
	rootCmd.AddCommand(analyzeCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().StringP("strategy", "s", "", "scoring strategy (default from config or file)")
	c.Flags().String("today", "", "reference date for due-date math, YYYY-MM-DD (default today)")
}

func readRunFlags(c *cobra.Command) runOptions {
	var ro runOptions
	ro.strategy, _ = c.Flags().GetString("strategy")
	ro.today, _ = c.Flags().GetString("today")
	if c.Flags().Lookup("limit") != nil {
		ro.limit, _ = c.Flags().GetInt("limit")
	}
	if c.Flags().Lookup("json") != nil {
		ro.asJSON, _ = c.Flags().GetBool("json")
	}
	return ro
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ro := readRunFlags(cmd)
	failed, err := printOutcomes(cmd.OutOrStdout(), e.runBatches(args, modeAnalyze, ro), ro.asJSON)
	if err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return rejectedError(failed, len(args))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return e.watch(ctx, cmd.OutOrStdout(), args, ro)
}

// watch re-runs a batch each time its file settles after a change, until
// ctx is cancelled.
func (e *env) watch(ctx context.Context, w io.Writer, paths []string, ro runOptions) error {
	watcher, err := batchfile.NewWatcher(paths...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Stop()

	p := ui.New(w)
	p.Info(fmt.Sprintf("watching %d file(s); press Ctrl-C to stop", len(paths)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			p.Changed(change)
			_ = e.events.Emit(telemetry.Event{
				Timestamp: time.Now(),
				Kind:      telemetry.KindBatchReloaded,
				Source:    change.File,
				Data:      map[string]any{"change": change.Kind.String()},
			})
			if change.Kind == batchfile.ChangeRemoved {
				p.Info("file removed; waiting for it to come back")
				continue
			}
			out := e.runBatch(change.File, modeAnalyze, ro)
			if _, err := printOutcomes(w, []outcome{out}, ro.asJSON); err != nil {
				return err
			}
		}
	}
}
