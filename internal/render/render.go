package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stegus64/plucklogviz/internal/model"
)

// Chart geometry in px. The label gutter holds right-aligned stream names; the
// drawing area has a fixed width and the page scrolls horizontally.
const (
	leftPad  = 260
	rightPad = 32
	topPad   = 52
	rowH     = 24
	barH     = 14
	chartW   = 1400
)

// Options controls document features beyond the payload itself.
type Options struct {
	// LiveReload injects a script that reloads the page whenever the serving
	// process pushes a rebuild notice over /ws.
	LiveReload bool
}

var (
	doc    = template.Must(template.New("doc").Parse(docTmpl))
	numFmt = message.NewPrinter(language.English)
)

type tick struct {
	X     float64
	Label string
}

type row struct {
	Summary bool // summary rows are always visible, chunk rows toggle
	Stream  string
	Label   string
	Fill    string
	Tooltip string
	X, W    float64
}

type exception struct {
	Stream string
	Text   string
}

type page struct {
	Title      string
	Meta       string
	Synthetic  bool
	Width      int
	Height     int
	RowH       int
	TopPad     int
	BarH       int
	LabelX     int
	LabelY     int
	TickTop    int
	TickBottom int
	TickLabelY int
	Ticks      []tick
	Rows       []row
	Exceptions []exception
	Payload    template.JS
	LiveReload bool
}

// HTML renders the payload into a self-contained interactive document. The
// payload itself is embedded as window.__TIMELINE__ so the document doubles
// as its own data export.
func HTML(tl *model.Timeline, opts Options) ([]byte, error) {
	payload, err := json.Marshal(tl)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	start, end := bounds(tl)
	span := end.Sub(start)
	if span <= 0 {
		span = time.Second
	}
	xAt := func(t time.Time) float64 {
		return leftPad + (t.Sub(start).Seconds()/span.Seconds())*chartW
	}

	// Rows are ordered by start time for display; the payload keeps the
	// log's first-seen order.
	ordered := make([]model.StreamRecord, len(tl.Streams))
	copy(ordered, tl.Streams)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].Name < ordered[j].Name
	})

	var (
		rows []row
		excs []exception
	)
	for _, s := range ordered {
		st, en := interval(s.Start, s.End, s.LastSeen, start)
		x := xAt(st)
		w := xAt(en) - x
		if w < 2 {
			w = 2
		}
		rows = append(rows, row{
			Summary: true,
			Stream:  s.Name,
			Label:   fmt.Sprintf("%s (%d chunks)", s.Name, len(s.Chunks)),
			Fill:    statusColor(s.Status),
			Tooltip: streamTooltip(s, start),
			X:       x,
			W:       w,
		})
		for _, c := range sortChunks(s.Chunks) {
			cst, cen := interval(c.Start, c.End, c.LastSeen, start)
			cx := xAt(cst)
			cw := xAt(cen) - cx
			if cw < 2 {
				cw = 2
			}
			rows = append(rows, row{
				Stream:  s.Name,
				Label:   fmt.Sprintf("%s / chunk=%s", s.Name, c.ID),
				Fill:    statusColor(c.Status),
				Tooltip: chunkTooltip(s.Name, c, start),
				X:       cx,
				W:       cw,
			})
		}
		if s.Exception != "" {
			excs = append(excs, exception{Stream: s.Name, Text: s.Exception})
		}
	}

	var ticks []tick
	for t := start.Truncate(time.Hour); !t.After(end); t = t.Add(time.Hour) {
		if t.Before(start) {
			continue
		}
		ticks = append(ticks, tick{X: xAt(t), Label: timeLabel(t, start)})
	}

	startLbl := timeLabel(start, start)
	if tl.Anchored {
		startLbl = start.Format("2006-01-02") + " " + startLbl
	}
	meta := fmt.Sprintf(
		"Collapsed: 1 bar per stream. Click a stream bar to expand its chunks. Total chunks: %d | Total rows: %d | Timeline: %s to %s (%s)",
		tl.Summary.Chunks, tl.Summary.TotalRows, startLbl, timeLabel(end, start), durLabel(int64(span/time.Second)))
	if tl.Summary.Anomalies > 0 {
		meta += fmt.Sprintf(" | Anomalies: %d", tl.Summary.Anomalies)
	}

	p := page{
		Title:      tl.Title,
		Meta:       meta,
		Synthetic:  !tl.Anchored,
		Width:      leftPad + rightPad + chartW,
		Height:     topPad + rowH*len(ordered) + 64,
		RowH:       rowH,
		TopPad:     topPad,
		BarH:       barH,
		LabelX:     leftPad - 10,
		LabelY:     barH - 1,
		TickTop:    topPad - 16,
		TickLabelY: topPad - 22,
		Ticks:      ticks,
		Rows:       rows,
		Exceptions: excs,
		Payload:    template.JS(payload),
		LiveReload: opts.LiveReload,
	}
	p.TickBottom = p.Height - 28

	var buf bytes.Buffer
	if err := doc.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// bounds derives the chart's time range, preferring the payload's own bounds
// and widening over stream intervals for payloads assembled by hand.
func bounds(tl *model.Timeline) (time.Time, time.Time) {
	start, end := parseT(tl.Start), parseT(tl.End)
	for _, s := range tl.Streams {
		if st := parseT(s.Start); !st.IsZero() && (start.IsZero() || st.Before(start)) {
			start = st
		}
		en := parseT(s.End)
		if en.IsZero() {
			en = parseT(s.LastSeen)
		}
		if en.After(end) {
			end = en
		}
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}

// interval resolves an entity's drawable window: end falls back to the last
// observation for running entities, then to the start for zero-length bars.
func interval(start, end, lastSeen string, origin time.Time) (time.Time, time.Time) {
	st := parseT(start)
	if st.IsZero() {
		st = origin
	}
	en := parseT(end)
	if en.IsZero() {
		en = parseT(lastSeen)
	}
	if en.IsZero() {
		en = st
	}
	return st, en
}

func streamTooltip(s model.StreamRecord, origin time.Time) string {
	st, en := interval(s.Start, s.End, s.LastSeen, origin)
	tip := fmt.Sprintf("%s | status=%s | start=%s | end=%s | duration=%s | chunks=%d | rows=%s | sizeKb=%s",
		s.Name, s.Status, timeLabel(st, origin), timeLabel(en, origin), durLabel(s.DurationSec),
		len(s.Chunks), numFmt.Sprintf("%d", s.TotalRows), numFmt.Sprintf("%d", s.TotalSizeKb))
	if s.Exception != "" {
		tip += "\n\nException:\n" + s.Exception
	}
	return tip
}

func chunkTooltip(stream string, c model.ChunkRecord, origin time.Time) string {
	st, en := interval(c.Start, c.End, c.LastSeen, origin)
	return fmt.Sprintf("%s / chunk=%s | status=%s | start=%s | end=%s | duration=%s | rows=%s | sizeKb=%s | lines=%d",
		stream, c.ID, c.Status, timeLabel(st, origin), timeLabel(en, origin), durLabel(c.DurationSec),
		numFmt.Sprintf("%d", c.Rows), numFmt.Sprintf("%d", c.SizeKb), c.Lines)
}

func statusColor(s model.Status) string {
	switch s {
	case model.StatusError:
		return "#dc2626"
	case model.StatusComplete:
		return "#16a34a"
	default:
		return "#6b7280"
	}
}

// sortChunks orders chunk rows for display: numeric ids numerically, then
// everything else lexically, ties broken by start time.
func sortChunks(chunks []model.ChunkRecord) []model.ChunkRecord {
	out := make([]model.ChunkRecord, len(chunks))
	copy(out, chunks)
	sort.SliceStable(out, func(i, j int) bool { return chunkLess(out[i], out[j]) })
	return out
}

func chunkLess(a, b model.ChunkRecord) bool {
	an, aok := digits(a.ID)
	bn, bok := digits(b.ID)
	switch {
	case aok && bok:
		if an != bn {
			return an < bn
		}
	case aok:
		return true
	case bok:
		return false
	default:
		if a.ID != b.ID {
			return a.ID < b.ID
		}
	}
	return a.Start < b.Start
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func parseT(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// timeLabel formats an instant as a time of day, prefixed with a relative day
// marker when the timeline crosses midnight.
func timeLabel(t, origin time.Time) string {
	if t.IsZero() {
		return ""
	}
	if d := dayIndex(t, origin); d > 0 {
		return fmt.Sprintf("D+%d %s", d, t.Format("15:04:05"))
	}
	return t.Format("15:04:05")
}

func dayIndex(t, origin time.Time) int {
	ty, tm, td := t.Date()
	oy, om, od := origin.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(oy, om, od, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b) / (24 * time.Hour))
}

// durLabel formats a duration as HH:MM:SS with unbounded hours.
func durLabel(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
}
