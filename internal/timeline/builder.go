package timeline

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/stegus64/plucklogviz/internal/model"
	"github.com/stegus64/plucklogviz/internal/parser"
)

// chunkKey addresses a chunk inside its stream; chunk ids are only unique per
// stream, never globally.
type chunkKey struct {
	stream string
	chunk  string
}

// Builder folds tokenized, timestamped lines into the stream forest. Events
// for one entity are scattered across the whole file, so everything is kept
// in by-name lookup tables until Finish. One Builder serves one scan; it is
// not safe for concurrent use.
//
// Status transitions are monotone: running entities can finalize to complete
// or error once, and terminal entities are frozen. A marker that contradicts
// a terminal status is counted as an anomaly and logged, never applied.
type Builder struct {
	streams map[string]*model.Stream
	chunks  map[chunkKey]*model.Chunk
	order   []*model.Stream // first-seen order

	// capture is the stream currently accumulating exception text. A fail:
	// line opens the window; it stays open over free-text lines and closes
	// on the next line carrying a timestamp, token or marker.
	capture *model.Stream

	first, last time.Time // bounds over every timestamped line
	anomalies   int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		streams: make(map[string]*model.Stream),
		chunks:  make(map[chunkKey]*model.Chunk),
	}
}

// Observe folds one line into the forest. instant is the line's resolved
// absolute time; the zero instant marks a line without a timestamp, which
// can still carry tokens and markers but never moves clocks.
func (b *Builder) Observe(l parser.Line, instant time.Time) {
	if b.capture != nil {
		if !l.Structural() {
			b.absorb(l.Raw)
			return
		}
		b.capture = nil
	}

	if !instant.IsZero() {
		if b.first.IsZero() || instant.Before(b.first) {
			b.first = instant
		}
		if instant.After(b.last) {
			b.last = instant
		}
	}

	name := l.Stream()
	if name == "" {
		if l.Chunk() != "" {
			b.anomaly("chunk=%s with no stream token: %s", l.Chunk(), strings.TrimSpace(l.Raw))
		}
		return
	}
	s := b.stream(name, instant)

	switch {
	case l.Fail:
		b.failLine(s, l, instant)
	case l.Complete && l.Chunk() == "":
		b.completeStream(s, l, instant)
	case l.Complete:
		b.touchStream(s, instant)
		b.completeChunk(s, b.observeChunk(s, l, instant), l, instant)
	default:
		b.touchStream(s, instant)
		if l.Chunk() != "" {
			b.observeChunk(s, l, instant)
		}
	}
}

// Finish closes the fold and returns the forest in first-seen order.
// Entities that never saw a terminal event remain running with no end time;
// the renderer draws those as open-ended bars.
func (b *Builder) Finish() []*model.Stream {
	b.capture = nil
	return b.order
}

// Bounds returns the earliest and latest instants seen on any timestamped
// line, whether or not the line belonged to a stream.
func (b *Builder) Bounds() (time.Time, time.Time) {
	return b.first, b.last
}

// Anomalies returns how many contradictory or unplaceable lines were
// absorbed during the fold.
func (b *Builder) Anomalies() int {
	return b.anomalies
}

// stream looks up or creates the named stream. Creation on an untimed line
// leaves Start zero; the first timed sighting backfills it.
func (b *Builder) stream(name string, instant time.Time) *model.Stream {
	if s, ok := b.streams[name]; ok {
		return s
	}
	s := &model.Stream{
		Name:     name,
		Status:   model.StatusRunning,
		Start:    instant,
		LastSeen: instant,
	}
	b.streams[name] = s
	b.order = append(b.order, s)
	return s
}

// touchStream records a routine sighting. Terminal streams are frozen: their
// status and timestamps are preserved, while their chunks keep their own
// lifecycles.
func (b *Builder) touchStream(s *model.Stream, instant time.Time) {
	if s.Status.Terminal() || instant.IsZero() {
		return
	}
	if s.Start.IsZero() {
		s.Start = instant
	}
	s.LastSeen = instant
}

// observeChunk looks up or creates the chunk and applies the line's metrics
// to it. rows= and fileSizeKb= are last-write-wins; values that do not parse
// as non-negative integers are ignored. Terminal chunks are frozen.
func (b *Builder) observeChunk(s *model.Stream, l parser.Line, instant time.Time) *model.Chunk {
	key := chunkKey{s.Name, l.Chunk()}
	c, ok := b.chunks[key]
	if !ok {
		c = &model.Chunk{
			ID:       l.Chunk(),
			Status:   model.StatusRunning,
			Start:    instant,
			LastSeen: instant,
			Lines:    1,
		}
		b.chunks[key] = c
		s.Chunks = append(s.Chunks, c)
		applyMetrics(c, l)
		return c
	}
	if c.Status.Terminal() {
		return c
	}
	c.Lines++
	if !instant.IsZero() {
		if c.Start.IsZero() {
			c.Start = instant
		}
		c.LastSeen = instant
	}
	applyMetrics(c, l)
	return c
}

// completeStream finalizes a stream on a stream-level "complete ===" line
// and closes its still-running chunks as complete at their last observation:
// a completed stream cannot have chunks still in flight.
func (b *Builder) completeStream(s *model.Stream, l parser.Line, instant time.Time) {
	if s.Status.Terminal() {
		b.anomaly("complete marker for %s stream %s: %s", s.Status, s.Name, strings.TrimSpace(l.Raw))
		return
	}
	b.closeStream(s, instant)
	s.Status = model.StatusComplete
	for _, c := range s.Chunks {
		if !c.Status.Terminal() {
			c.Status = model.StatusComplete
			c.End = c.LastSeen
		}
	}
}

// completeChunk finalizes one chunk on a chunk-level "complete ===" line.
func (b *Builder) completeChunk(s *model.Stream, c *model.Chunk, l parser.Line, instant time.Time) {
	if c.Status.Terminal() {
		b.anomaly("complete marker for %s chunk %s/%s: %s", c.Status, s.Name, c.ID, strings.TrimSpace(l.Raw))
		return
	}
	b.closeChunk(c, instant)
	c.Status = model.StatusComplete
}

// failLine finalizes the most specific entity named on a fail: line (the
// chunk when a chunk= token is present) and moves the owning stream to
// error as well: a failed chunk fails its stream. The fail remainder opens
// the exception capture window on the stream.
func (b *Builder) failLine(s *model.Stream, l parser.Line, instant time.Time) {
	if l.Chunk() != "" {
		c := b.observeChunk(s, l, instant)
		switch c.Status {
		case model.StatusComplete:
			b.anomaly("fail marker for completed chunk %s/%s: %s", s.Name, c.ID, strings.TrimSpace(l.Raw))
		case model.StatusRunning:
			b.closeChunk(c, instant)
			c.Status = model.StatusError
		}
	}

	switch s.Status {
	case model.StatusComplete:
		b.anomaly("fail marker for completed stream %s: %s", s.Name, strings.TrimSpace(l.Raw))
		return
	case model.StatusRunning:
		b.closeStream(s, instant)
		s.Status = model.StatusError
	}
	// Repeated failures on an error stream keep accumulating text.
	b.appendException(s, l.FailText())
	b.capture = s
}

// closeStream stamps the end of a stream interval. An untimed finalizing
// line falls back to the last observation.
func (b *Builder) closeStream(s *model.Stream, instant time.Time) {
	if instant.IsZero() {
		s.End = s.LastSeen
		return
	}
	if s.Start.IsZero() {
		s.Start = instant
	}
	s.LastSeen = instant
	s.End = instant
}

func (b *Builder) closeChunk(c *model.Chunk, instant time.Time) {
	if instant.IsZero() {
		c.End = c.LastSeen
		return
	}
	if c.Start.IsZero() {
		c.Start = instant
	}
	c.LastSeen = instant
	c.End = instant
}

// absorb appends one free-text continuation line to the capture stream.
// Blank lines are skipped without closing the window.
func (b *Builder) absorb(raw string) {
	b.appendException(b.capture, strings.TrimRight(raw, " \t\r"))
}

func (b *Builder) appendException(s *model.Stream, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if s.Exception != "" {
		s.Exception += "\n"
	}
	s.Exception += text
}

func (b *Builder) anomaly(format string, args ...any) {
	b.anomalies++
	log.Printf("anomaly: "+format, args...)
}

// applyMetrics copies rows= and fileSizeKb= values onto the chunk.
func applyMetrics(c *model.Chunk, l parser.Line) {
	if v, ok := parseCount(l.Token("rows")); ok {
		c.Rows = v
	}
	if v, ok := parseCount(l.Token("fileSizeKb")); ok {
		c.SizeKb = v
	}
}

func parseCount(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
