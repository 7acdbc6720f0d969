package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stegus64/plucklogviz/internal/render"
	"github.com/stegus64/plucklogviz/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <log file or glob>",
	Short: "Regenerate the document whenever the log changes",
	Long: `Watch a pluck log and rewrite the output document every time the
pipeline appends to it. Useful next to a long nightly run: keep the
document open in a browser and refresh to follow progress.

The argument may be a glob pattern; when it matches several files the
first match (sorted) is rendered.

Examples:
  plucklogviz watch pluck.log
  plucklogviz watch "logs/pluck-*.log" -o out/gantt.html --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a rebuild")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nplucklogviz shutting down...")
		cancel()
	}()

	w, err := watcher.New(args)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	go w.Start(ctx)

	fmt.Fprintf(os.Stderr, "plucklogviz watching %s\n", args[0])

	rebuild := func() {
		doc, tl, err := build(watchTarget(w, args[0]), render.Options{})
		if err != nil {
			log.Printf("rebuild failed: %v", err)
			return
		}
		outPath := viper.GetString("output")
		if err := os.WriteFile(outPath, doc, 0o644); err != nil {
			log.Printf("write output: %v", err)
			return
		}
		log.Printf("rebuilt %s (%d chunk bars)", outPath, tl.Summary.Chunks)
	}

	// First build straight away; failures are not fatal in watch mode.
	rebuild()

	rebuildLoop(ctx, w, watchDebounce, rebuild)
	return nil
}

// watchTarget resolves the file to render on each rebuild. Matches are
// re-listed every time so a log that appears after startup gets picked up.
func watchTarget(w *watcher.Watcher, arg string) string {
	if paths := w.Paths(); len(paths) > 0 {
		return paths[0]
	}
	return arg
}

// rebuildLoop coalesces bursts of watcher events and runs fn once per
// quiet period. Returns when ctx is cancelled or the watcher closes.
func rebuildLoop(ctx context.Context, w *watcher.Watcher, quiet time.Duration, fn func()) {
	timer := time.NewTimer(quiet)
	timer.Stop()
	dirty := false

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			dirty = true
			timer.Reset(quiet)
		case <-timer.C:
			if dirty {
				dirty = false
				fn()
			}
		}
	}
}
