package model

// Timeline is the finished payload handed to the rendering layer: streams in
// first-seen order, each with its chunks in first-seen order, plus overall
// bounds and totals. It is embedded into the generated document as JSON and
// served verbatim at /api/timeline.json, so all times are RFC3339 strings.
type Timeline struct {
	Title       string         `json:"title"`
	Source      string         `json:"source"` // input log path
	GeneratedAt string         `json:"generated_at"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	DurationSec int64          `json:"duration_sec"`
	Anchored    bool           `json:"anchored"` // false: no run= token seen, dates are synthetic
	Streams     []StreamRecord `json:"streams"`
	Summary     Summary        `json:"summary"`
}

// StreamRecord is the serialized form of a Stream. End is omitted while the
// stream is still running; LastSeen always carries the latest observation so
// an open-ended bar can still be drawn.
type StreamRecord struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Start       string        `json:"start"`
	End         string        `json:"end,omitempty"`
	LastSeen    string        `json:"last_seen"`
	DurationSec int64         `json:"duration_sec"`
	TotalRows   int64         `json:"total_rows"`
	TotalSizeKb int64         `json:"total_size_kb"`
	Exception   string        `json:"exception,omitempty"`
	Chunks      []ChunkRecord `json:"chunks"`
}

// ChunkRecord is the serialized form of a Chunk.
type ChunkRecord struct {
	ID          string `json:"id"`
	Status      Status `json:"status"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	LastSeen    string `json:"last_seen"`
	DurationSec int64  `json:"duration_sec"`
	Rows        int64  `json:"rows"`
	SizeKb      int64  `json:"size_kb"`
	Lines       int    `json:"lines"`
}

// Summary holds whole-timeline counts shown in the document header and the
// terminal report. Stream status counts are per stream, not per chunk.
type Summary struct {
	Streams     int   `json:"streams"`
	Chunks      int   `json:"chunks"`
	Running     int   `json:"running"`
	Complete    int   `json:"complete"`
	Errors      int   `json:"errors"`
	TotalRows   int64 `json:"total_rows"`
	TotalSizeKb int64 `json:"total_size_kb"`
	Anomalies   int   `json:"anomalies"`
}
