package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Pluck logs are free text with embedded key=value tokens. Only the line
// timestamp, the stream/chunk/rows/fileSizeKb/run tokens and the two literal
// markers below carry meaning; everything else on a line is inert.
const (
	failMarker     = "fail:"
	completeMarker = "complete ==="
)

var (
	// timeRe matches a valid HH:MM:SS time of day. The field ranges are part
	// of the pattern so digit runs like 99:00:00 are not taken for times.
	timeRe = regexp.MustCompile(`\b([01][0-9]|2[0-3]):([0-5][0-9]):([0-5][0-9])\b`)

	// tokenRe matches key=value tokens. Values run to the next whitespace or
	// closing bracket, so bracketed tags like [stream=orders] parse cleanly.
	tokenRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)=([^\s\]]+)`)
)

// timeWindow bounds how far into a line the timestamp may start. Pluck lines
// lead with the time, at most behind a short prefix such as "[10:00:00]".
const timeWindow = 16

// NoTime is the TimeOfDay value of a line without a recognizable timestamp.
const NoTime = -1

// Line is one tokenized log line. Produced fresh per input line and never
// retained by downstream stages.
type Line struct {
	Raw       string
	TimeOfDay int               // seconds since midnight, or NoTime
	Tokens    map[string]string // every key=value token on the line
	Fail      bool              // line contains "fail:"
	Complete  bool              // line contains "complete ==="
}

// Parse tokenizes one raw log line. It never fails: a line with nothing
// recognizable comes back inert (no time, no tokens, no markers) and is
// skipped by downstream stages.
func Parse(raw string) Line {
	l := Line{Raw: raw, TimeOfDay: NoTime}

	if loc := timeRe.FindStringSubmatchIndex(raw); loc != nil && loc[0] < timeWindow {
		h, _ := strconv.Atoi(raw[loc[2]:loc[3]])
		m, _ := strconv.Atoi(raw[loc[4]:loc[5]])
		s, _ := strconv.Atoi(raw[loc[6]:loc[7]])
		l.TimeOfDay = h*3600 + m*60 + s
	}

	if matches := tokenRe.FindAllStringSubmatch(raw, -1); matches != nil {
		l.Tokens = make(map[string]string, len(matches))
		for _, m := range matches {
			l.Tokens[m[1]] = m[2]
		}
	}

	l.Fail = strings.Contains(raw, failMarker)
	l.Complete = strings.Contains(raw, completeMarker)
	return l
}

// HasTime reports whether the line carried a recognizable HH:MM:SS.
func (l Line) HasTime() bool { return l.TimeOfDay != NoTime }

// Token returns the value of a key=value token, or "" when absent.
func (l Line) Token(key string) string { return l.Tokens[key] }

// Stream returns the stream= token value, or "".
func (l Line) Stream() string { return l.Tokens["stream"] }

// Chunk returns the chunk= token value, or "".
func (l Line) Chunk() string { return l.Tokens["chunk"] }

// Run returns the run= token value, or "".
func (l Line) Run() string { return l.Tokens["run"] }

// FailText returns the trimmed remainder of the line after the first "fail:",
// the opening piece of a stream's captured exception text.
func (l Line) FailText() string {
	i := strings.Index(l.Raw, failMarker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(l.Raw[i+len(failMarker):])
}

// Structural reports whether the line starts a new log entry for the purposes
// of exception capture: any timestamp, token or marker ends the capture window
// opened by a fail: line.
func (l Line) Structural() bool {
	return l.HasTime() || len(l.Tokens) > 0 || l.Fail || l.Complete
}
