package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stegus64/plucklogviz/internal/timeline"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pluck.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	logPath := writeLog(t,
		"10:00:00 [worker-1] starting stream=orders chunk=0 rows=100",
		"10:00:05 [worker-1] stream=orders chunk=0 complete === fileSizeKb=12",
	)
	outPath := filepath.Join(t.TempDir(), "out.html")

	rootCmd.SetArgs([]string{logPath, "-o", outPath, "--summary", "none"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	doc, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(doc), "<svg") {
		t.Error("output document missing svg")
	}
	if !strings.Contains(string(doc), "orders") {
		t.Error("output document missing stream name")
	}
}

func TestRenderCommandNoMatches(t *testing.T) {
	logPath := writeLog(t, "just some chatter", "more chatter")
	outPath := filepath.Join(t.TempDir(), "out.html")

	rootCmd.SetArgs([]string{logPath, "-o", outPath, "--summary", "none"})
	err := rootCmd.Execute()
	if !errors.Is(err, timeline.ErrNoMatchingEntries) {
		t.Fatalf("expected no-matches error, got %v", err)
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("output file should not exist after a failed scan")
	}
}
