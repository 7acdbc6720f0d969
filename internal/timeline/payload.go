package timeline

import (
	"errors"
	"time"

	"github.com/stegus64/plucklogviz/internal/model"
)

// ErrNoMatchingEntries is the pipeline's only fatal condition: not a single
// line in the input carried both a stream= and a chunk= token, so there is
// nothing to draw. The message is shown to the user verbatim.
var ErrNoMatchingEntries = errors.New("No lines with both stream=... and chunk=... were found.")

// Meta carries scan-level facts into the payload alongside the stream forest.
type Meta struct {
	Title     string
	Source    string
	Start     time.Time // earliest instant on any timestamped line
	End       time.Time // latest instant on any timestamped line
	Anchored  bool      // dates seeded from a run= token rather than synthetic
	Anomalies int
}

// BuildPayload projects the aggregated stream forest into the flat payload
// the renderers consume: first-seen order preserved, instants as RFC3339
// strings, end omitted for anything still running. No reconstruction logic
// lives here.
func BuildPayload(streams []*model.Stream, meta Meta) (*model.Timeline, error) {
	chunks := 0
	for _, s := range streams {
		chunks += len(s.Chunks)
	}
	if chunks == 0 {
		return nil, ErrNoMatchingEntries
	}

	tl := &model.Timeline{
		Title:       meta.Title,
		Source:      meta.Source,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Start:       fmtTime(meta.Start),
		End:         fmtTime(meta.End),
		DurationSec: spanSec(meta.Start, meta.End),
		Anchored:    meta.Anchored,
		Streams:     make([]model.StreamRecord, 0, len(streams)),
	}
	tl.Summary.Anomalies = meta.Anomalies

	for _, s := range streams {
		rec := model.StreamRecord{
			Name:        s.Name,
			Status:      s.Status,
			Start:       fmtTime(s.Start),
			End:         fmtTime(s.End),
			LastSeen:    fmtTime(s.LastSeen),
			DurationSec: extentSec(s.Start, s.End, s.LastSeen),
			TotalRows:   s.TotalRows,
			TotalSizeKb: s.TotalSizeKb,
			Exception:   s.Exception,
			Chunks:      make([]model.ChunkRecord, 0, len(s.Chunks)),
		}
		for _, c := range s.Chunks {
			rec.Chunks = append(rec.Chunks, model.ChunkRecord{
				ID:          c.ID,
				Status:      c.Status,
				Start:       fmtTime(c.Start),
				End:         fmtTime(c.End),
				LastSeen:    fmtTime(c.LastSeen),
				DurationSec: extentSec(c.Start, c.End, c.LastSeen),
				Rows:        c.Rows,
				SizeKb:      c.SizeKb,
				Lines:       c.Lines,
			})
		}

		switch s.Status {
		case model.StatusComplete:
			tl.Summary.Complete++
		case model.StatusError:
			tl.Summary.Errors++
		default:
			tl.Summary.Running++
		}
		tl.Summary.Streams++
		tl.Summary.Chunks += len(s.Chunks)
		tl.Summary.TotalRows += s.TotalRows
		tl.Summary.TotalSizeKb += s.TotalSizeKb
		tl.Streams = append(tl.Streams, rec)
	}

	return tl, nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// extentSec measures an entity's visible bar: start to end when closed,
// start to the last observation while still running.
func extentSec(start, end, lastSeen time.Time) int64 {
	if end.IsZero() {
		end = lastSeen
	}
	return spanSec(start, end)
}

func spanSec(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}
