package model

import "time"

// Status of a stream or chunk as reconstructed from the log.
type Status string

const (
	StatusRunning  Status = "running" // no terminal event observed yet
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Terminal reports whether the status can no longer change. Terminal
// entities keep their status and timestamps even when later log lines
// contradict them.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Chunk is one processing window inside a stream, identified by the chunk=
// token. IDs are unique within their owning stream only; a chunk never moves
// to another stream.
type Chunk struct {
	ID       string
	Status   Status
	Start    time.Time
	End      time.Time // zero until a terminal event closes the chunk
	LastSeen time.Time // most recent observation; provisional end of an open interval
	Rows     int64     // last rows= value seen (last-write-wins)
	SizeKb   int64     // last fileSizeKb= value seen
	Lines    int       // number of log lines that mentioned this chunk
}

// Stream is one data stream and its chunks, identified by the stream= token.
// TotalRows and TotalSizeKb are filled by the aggregation pass after the
// reconstruction fold has finished.
type Stream struct {
	Name        string
	Status      Status
	Start       time.Time
	End         time.Time // zero until complete === or fail: closes the stream
	LastSeen    time.Time
	Chunks      []*Chunk // first-seen order
	TotalRows   int64
	TotalSizeKb int64
	Exception   string // accumulated fail: text, empty if the stream never failed
}

// Chunk returns the chunk with the given id, or nil.
func (s *Stream) Chunk(id string) *Chunk {
	for _, c := range s.Chunks {
		if c.ID == id {
			return c
		}
	}
	return nil
}
