package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Event represents a change to a watched log file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports changes to pluck log files using OS-level notifications.
// Pipeline runs rewrite their logs from scratch, so the parent directories
// are watched rather than the files themselves: a log that is removed and
// recreated keeps reporting without re-arming. Directories are discovered
// when the patterns are expanded at startup; files appearing in directories
// created later are not picked up.
type Watcher struct {
	fsw    *fsnotify.Watcher
	Events chan Event

	patterns []string

	mu      sync.Mutex
	targets map[string]bool
}

// New creates a Watcher for the given glob patterns. Recursive patterns like
// logs/**/pluck*.log are supported; a plain path works whether or not the
// file exists yet.
func New(patterns []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		Events:  make(chan Event, 256),
		targets: make(map[string]bool),
	}

	dirs := make(map[string]bool)
	for _, pattern := range patterns {
		abs, err := filepath.Abs(pattern)
		if err != nil {
			log.Printf("warning: cannot resolve pattern %q: %v", pattern, err)
			continue
		}
		w.patterns = append(w.patterns, filepath.ToSlash(abs))

		base, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
		dirs[filepath.FromSlash(base)] = true

		matches, err := doublestar.FilepathGlob(abs, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			log.Printf("warning: cannot expand pattern %q: %v", pattern, err)
			continue
		}
		for _, m := range matches {
			w.targets[m] = true
			dirs[filepath.Dir(m)] = true
		}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Printf("warning: cannot watch %s: %v", dir, err)
		}
	}

	return w, nil
}

// Start begins listening for file events. It blocks until the context is
// cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			select {
			case w.Events <- Event{Path: ev.Name, Op: ev.Op}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// Paths returns the log files matched so far, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.targets))
	for p := range w.targets {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// relevant filters directory events down to the watched logs. New files that
// match a pattern are registered as targets on first sight.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.targets[abs] {
		return true
	}
	for _, p := range w.patterns {
		if ok, err := doublestar.Match(p, filepath.ToSlash(abs)); err == nil && ok {
			w.targets[abs] = true
			return true
		}
	}
	return false
}
