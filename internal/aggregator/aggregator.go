package aggregator

import (
	"time"

	"github.com/stegus64/plucklogviz/internal/model"
)

// Aggregate derives each stream's summary fields from its chunks: row and
// file-size totals and the overall time bounds. It runs once, after the
// reconstruction fold has finished, and never mutates chunk-level fields.
// Duplicate chunk ids were already merged during the fold, so every chunk
// counts exactly once.
func Aggregate(streams []*model.Stream) {
	for _, s := range streams {
		aggregate(s)
	}
}

func aggregate(s *model.Stream) {
	if len(s.Chunks) == 0 {
		// No chunks to derive from; the stream keeps its own tracked bounds.
		return
	}

	var (
		rows, size int64
		start, end time.Time
	)
	for _, c := range s.Chunks {
		rows += c.Rows
		size += c.SizeKb

		if !c.Start.IsZero() && (start.IsZero() || c.Start.Before(start)) {
			start = c.Start
		}
		ce := c.End
		if ce.IsZero() {
			ce = c.LastSeen // open interval: extend to the last observation
		}
		if ce.After(end) {
			end = ce
		}
	}

	s.TotalRows = rows
	s.TotalSizeKb = size

	if !start.IsZero() {
		s.Start = start
	}
	if !end.IsZero() {
		// The stream's own terminal instant wins unless a chunk outlived it;
		// the stream interval must always cover its chunks.
		if !s.End.IsZero() && end.After(s.End) {
			s.End = end
		}
		if end.After(s.LastSeen) {
			s.LastSeen = end
		}
	}
}
