package aggregator

import (
	"testing"
	"time"

	"github.com/stegus64/plucklogviz/internal/model"
)

func hms(h, m, s int) time.Time {
	return time.Date(1970, time.January, 1, h, m, s, 0, time.UTC)
}

func TestAggregateTotalsAndBounds(t *testing.T) {
	s := &model.Stream{
		Name:     "orders",
		Status:   model.StatusRunning,
		Start:    hms(10, 0, 2),
		LastSeen: hms(10, 0, 2),
		Chunks: []*model.Chunk{
			{ID: "0", Status: model.StatusComplete, Start: hms(10, 0, 0), End: hms(10, 0, 5), LastSeen: hms(10, 0, 5), Rows: 100, SizeKb: 5},
			{ID: "1", Status: model.StatusRunning, Start: hms(10, 0, 6), LastSeen: hms(10, 0, 30), Rows: 40, SizeKb: 2},
		},
	}

	Aggregate([]*model.Stream{s})

	if s.TotalRows != 140 {
		t.Errorf("expected 140 total rows, got %d", s.TotalRows)
	}
	if s.TotalSizeKb != 7 {
		t.Errorf("expected 7 total size kb, got %d", s.TotalSizeKb)
	}
	if !s.Start.Equal(hms(10, 0, 0)) {
		t.Errorf("expected start from earliest chunk, got %v", s.Start)
	}
	// Running stream: no end, but the last observation covers the open chunk.
	if !s.End.IsZero() {
		t.Errorf("expected no end on a running stream, got %v", s.End)
	}
	if !s.LastSeen.Equal(hms(10, 0, 30)) {
		t.Errorf("expected last seen 10:00:30, got %v", s.LastSeen)
	}
}

func TestAggregateEndCoversLateChunk(t *testing.T) {
	s := &model.Stream{
		Name:     "orders",
		Status:   model.StatusComplete,
		Start:    hms(10, 0, 0),
		End:      hms(10, 0, 6),
		LastSeen: hms(10, 0, 6),
		Chunks: []*model.Chunk{
			{ID: "0", Status: model.StatusComplete, Start: hms(10, 0, 1), End: hms(10, 0, 9), LastSeen: hms(10, 0, 9)},
		},
	}

	Aggregate([]*model.Stream{s})

	// The stream interval must cover every chunk even when the chunk outlived
	// the stream's own terminal line.
	if !s.End.Equal(hms(10, 0, 9)) {
		t.Errorf("expected end raised to 10:00:09, got %v", s.End)
	}
}

func TestAggregateKeepsTerminalInstant(t *testing.T) {
	s := &model.Stream{
		Name:     "orders",
		Status:   model.StatusComplete,
		Start:    hms(10, 0, 0),
		End:      hms(10, 0, 6),
		LastSeen: hms(10, 0, 6),
		Chunks: []*model.Chunk{
			{ID: "0", Status: model.StatusComplete, Start: hms(10, 0, 0), End: hms(10, 0, 5), LastSeen: hms(10, 0, 5)},
		},
	}

	Aggregate([]*model.Stream{s})

	if !s.End.Equal(hms(10, 0, 6)) {
		t.Errorf("expected end to stay at the terminal line, got %v", s.End)
	}
}

func TestAggregateChunklessStream(t *testing.T) {
	s := &model.Stream{
		Name:     "idle",
		Status:   model.StatusRunning,
		Start:    hms(9, 0, 0),
		LastSeen: hms(9, 5, 0),
	}

	Aggregate([]*model.Stream{s})

	if s.TotalRows != 0 || s.TotalSizeKb != 0 {
		t.Errorf("expected zero totals, got %d/%d", s.TotalRows, s.TotalSizeKb)
	}
	if !s.Start.Equal(hms(9, 0, 0)) || !s.LastSeen.Equal(hms(9, 5, 0)) {
		t.Error("expected tracked bounds to be kept")
	}
}

func TestAggregateDoesNotTouchChunks(t *testing.T) {
	c := &model.Chunk{ID: "0", Status: model.StatusRunning, Start: hms(10, 0, 0), LastSeen: hms(10, 0, 4), Rows: 7}
	s := &model.Stream{Name: "orders", Status: model.StatusRunning, Chunks: []*model.Chunk{c}}

	Aggregate([]*model.Stream{s})

	if c.Rows != 7 || !c.LastSeen.Equal(hms(10, 0, 4)) || c.Status != model.StatusRunning {
		t.Error("expected chunk fields unchanged")
	}
}
