package timeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/stegus64/plucklogviz/internal/aggregator"
	"github.com/stegus64/plucklogviz/internal/model"
	"github.com/stegus64/plucklogviz/internal/parser"
)

// Options controls a scan. Source is a display label only; it is never
// opened here.
type Options struct {
	Title  string
	Source string
}

// FromFile scans a pluck log from disk and returns the render payload.
func FromFile(path string, opts Options) (*model.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if opts.Source == "" {
		opts.Source = path
	}
	return FromReader(f, opts)
}

// FromReader runs the whole pipeline over r: tokenize each line, resolve
// its wall-clock instant through the date anchor, fold it into the builder,
// then aggregate and project. The reader is consumed to EOF in one pass.
func FromReader(r io.Reader, opts Options) (*model.Timeline, error) {
	var (
		anchor parser.Anchor
		b      = NewBuilder()
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		l := parser.Parse(sc.Text())
		if run := l.Run(); run != "" {
			// Seed before resolving so the seeding line itself lands on the
			// run's own date.
			anchor.Seed(run)
		}
		var instant time.Time
		if l.HasTime() {
			instant = anchor.Resolve(l.TimeOfDay)
		}
		b.Observe(l, instant)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	streams := b.Finish()
	aggregator.Aggregate(streams)

	start, end := b.Bounds()
	return BuildPayload(streams, Meta{
		Title:     opts.Title,
		Source:    opts.Source,
		Start:     start,
		End:       end,
		Anchored:  anchor.Anchored(),
		Anomalies: b.Anomalies(),
	})
}
