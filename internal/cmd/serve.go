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

	"github.com/stegus64/plucklogviz/internal/hub"
	"github.com/stegus64/plucklogviz/internal/render"
	"github.com/stegus64/plucklogviz/internal/server"
	"github.com/stegus64/plucklogviz/internal/watcher"
)

var (
	serveAddr     string
	serveDebounce time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve <log file or glob>",
	Short: "Serve the document over HTTP with live reload",
	Long: `Serve the generated document over HTTP, rebuild it whenever the log
changes, and push a reload notice to connected browsers over a websocket.

The document is kept in memory and never written to disk. Until the
first successful build the server answers 503; after a failed rebuild it
keeps serving the last good document and reports the error on /healthz.

Examples:
  plucklogviz serve pluck.log
  plucklogviz serve pluck.log --addr :8080 --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7423", "listen address")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", 500*time.Millisecond, "quiet period before a rebuild")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New()
	defer h.Close()
	srv := server.New(h, args[0], serveAddr)

	// gin's Run has no shutdown hook, so the signal path stops the rebuild
	// loop and watcher via ctx and then exits the process.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nplucklogviz shutting down...")
		cancel()
		h.Close()
		os.Exit(0)
	}()

	w, err := watcher.New(args)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	go w.Start(ctx)

	rebuild := func() {
		doc, tl, err := build(watchTarget(w, args[0]), render.Options{LiveReload: true})
		if err != nil {
			log.Printf("rebuild failed: %v", err)
			srv.Fail(err)
			return
		}
		srv.Update(doc, tl)
		log.Printf("rebuilt from %s (%d chunk bars)", args[0], tl.Summary.Chunks)
	}

	rebuild()
	go rebuildLoop(ctx, w, serveDebounce, rebuild)

	fmt.Fprintf(os.Stderr, "plucklogviz serving %s on %s\n", args[0], serveAddr)
	return srv.Start()
}
