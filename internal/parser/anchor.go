package parser

import (
	"regexp"
	"strconv"
	"time"
)

// Log lines carry only a time of day. The full date appears in run= tokens
// (run=YYYYMMDD_HHMMSS...), so the Anchor tracks a current date seeded from
// those and advanced by one day whenever the time of day jumps backwards,
// which is the midnight-rollover heuristic: any strict decrease counts, there
// is no tolerance window.

// epochDate is the synthetic anchor used until a run= token establishes a
// real date. Relative ordering of resolved instants is still correct; the
// calendar day is meaningless and reads as 1970.
var epochDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// runRe matches the date and time prefix of a run= token value, e.g.
// 20240319_154500_eu_central from run=20240319_154500_eu_central.
var runRe = regexp.MustCompile(`^(\d{8})_(\d{6})`)

// Anchor resolves bare HH:MM:SS times into absolute instants. The zero value
// is ready to use and falls back to the epoch date. Not safe for concurrent
// use; each scan owns its Anchor.
type Anchor struct {
	date    time.Time
	lastTOD int
	started bool // at least one time resolved or run= seen
	seeded  bool // a run= token established a real date
}

// Seed sets the anchor date from a run=YYYYMMDD_HHMMSS... token value. The
// token's own time component becomes the rollover reference, so a run started
// just before midnight still rolls over correctly on the next early-morning
// line. An explicit seed takes precedence over any inferred rollover state.
// Returns false when the value does not carry a valid date/time prefix.
func (a *Anchor) Seed(run string) bool {
	m := runRe.FindStringSubmatch(run)
	if m == nil {
		return false
	}
	date, err := time.Parse("20060102", m[1])
	if err != nil {
		return false
	}
	h, _ := strconv.Atoi(m[2][0:2])
	min, _ := strconv.Atoi(m[2][2:4])
	sec, _ := strconv.Atoi(m[2][4:6])
	if h > 23 || min > 59 || sec > 59 {
		return false
	}
	a.date = date
	a.lastTOD = h*3600 + min*60 + sec
	a.started = true
	a.seeded = true
	return true
}

// Resolve converts a time of day (seconds since midnight) into an absolute
// instant on the current anchor date, advancing the date by one day first
// when the time of day is strictly earlier than the previous one.
func (a *Anchor) Resolve(tod int) time.Time {
	if a.date.IsZero() {
		a.date = epochDate
	}
	if a.started && tod < a.lastTOD {
		a.date = a.date.AddDate(0, 0, 1)
	}
	a.started = true
	a.lastTOD = tod
	return a.date.Add(time.Duration(tod) * time.Second)
}

// Anchored reports whether a run= token has established a real date. When
// false, resolved instants sit on the synthetic epoch date and only their
// relative order is meaningful.
func (a *Anchor) Anchored() bool { return a.seeded }
