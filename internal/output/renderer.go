package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stegus64/plucklogviz/internal/model"
)

// Renderer writes a finished timeline summary to an output stream.
type Renderer interface {
	Render(tl *model.Timeline) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal summary)
// ---------------------------------------------------------------------------

var (
	styleRunning  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // gray
	styleComplete = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleStream   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // cyan
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleTotals   = lipgloss.NewStyle().Bold(true)
)

var num = message.NewPrinter(language.English)

// TextRenderer prints one row per stream plus a totals line, with
// status-based colors.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(tl *model.Timeline) error {
	for _, s := range tl.Streams {
		end := s.End
		if end == "" {
			end = s.LastSeen
		}
		line := fmt.Sprintf("%s %s %3d chunks %12s rows %9s kB  %s",
			statusTag(s.Status),
			styleStream.Render(fmt.Sprintf("%-24s", s.Name)),
			len(s.Chunks),
			num.Sprintf("%d", s.TotalRows),
			num.Sprintf("%d", s.TotalSizeKb),
			styleDim.Render(clock(s.Start)+".."+clock(end)))
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
		if s.Exception != "" {
			first, _, _ := strings.Cut(s.Exception, "\n")
			if _, err := fmt.Fprintln(r.w, "         "+styleError.Render(first)); err != nil {
				return err
			}
		}
	}

	sum := tl.Summary
	totals := fmt.Sprintf("%d streams, %d chunks: %d complete, %d running, %d errors | %s rows, %s kB",
		sum.Streams, sum.Chunks, sum.Complete, sum.Running, sum.Errors,
		num.Sprintf("%d", sum.TotalRows), num.Sprintf("%d", sum.TotalSizeKb))
	if sum.Anomalies > 0 {
		totals += fmt.Sprintf(" | %d anomalies", sum.Anomalies)
	}
	_, err := fmt.Fprintln(r.w, styleTotals.Render(totals))
	return err
}

func statusTag(status model.Status) string {
	padded := fmt.Sprintf("%-8s", status)
	switch status {
	case model.StatusComplete:
		return styleComplete.Render(padded)
	case model.StatusError:
		return styleError.Render(padded)
	default:
		return styleRunning.Render(padded)
	}
}

// clock shortens an RFC3339 instant to its time of day.
func clock(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints the whole timeline payload as one JSON object.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(tl *model.Timeline) error {
	return r.enc.Encode(tl)
}
