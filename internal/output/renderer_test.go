package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stegus64/plucklogviz/internal/model"
)

func sampleTimeline() *model.Timeline {
	return &model.Timeline{
		Title: "t",
		Streams: []model.StreamRecord{
			{
				Name: "orders", Status: model.StatusComplete,
				Start: "1970-01-01T10:00:00Z", End: "1970-01-01T10:10:00Z", LastSeen: "1970-01-01T10:10:00Z",
				TotalRows: 1234, TotalSizeKb: 56,
				Chunks: []model.ChunkRecord{{ID: "0", Status: model.StatusComplete}},
			},
			{
				Name: "events", Status: model.StatusError,
				Start: "1970-01-01T10:02:00Z", End: "1970-01-01T10:20:00Z", LastSeen: "1970-01-01T10:20:00Z",
				Exception: "ValueError: boom\nTraceback follows",
				Chunks:    []model.ChunkRecord{{ID: "7", Status: model.StatusError}},
			},
		},
		Summary: model.Summary{Streams: 2, Chunks: 2, Complete: 1, Errors: 1, TotalRows: 1234, TotalSizeKb: 56, Anomalies: 1},
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	if err := r.Render(sampleTimeline()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "orders") || !strings.Contains(out, "events") {
		t.Errorf("expected both stream names, got %q", out)
	}
	if !strings.Contains(out, "10:00:00..10:10:00") {
		t.Errorf("expected the stream window, got %q", out)
	}
	// Only the first exception line appears in the summary.
	if !strings.Contains(out, "ValueError: boom") {
		t.Errorf("expected the exception head line, got %q", out)
	}
	if strings.Contains(out, "Traceback follows") {
		t.Errorf("expected the traceback elided, got %q", out)
	}
	if !strings.Contains(out, "2 streams, 2 chunks: 1 complete, 0 running, 1 errors") {
		t.Errorf("expected the totals line, got %q", out)
	}
	if !strings.Contains(out, "1 anomalies") {
		t.Errorf("expected the anomaly count, got %q", out)
	}
}

func TestTextRendererOpenStream(t *testing.T) {
	tl := sampleTimeline()
	tl.Streams = tl.Streams[:1]
	tl.Streams[0].Status = model.StatusRunning
	tl.Streams[0].End = ""

	var buf bytes.Buffer
	if err := NewTextRenderer(&buf).Render(tl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Running streams fall back to the last observation.
	if !strings.Contains(buf.String(), "10:00:00..10:10:00") {
		t.Errorf("expected last-seen as the window end, got %q", buf.String())
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer(&buf).Render(sampleTimeline()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded model.Timeline
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Streams) != 2 {
		t.Errorf("expected 2 streams, got %d", len(decoded.Streams))
	}
	if decoded.Summary.TotalRows != 1234 {
		t.Errorf("expected totals to survive, got %d", decoded.Summary.TotalRows)
	}
}
