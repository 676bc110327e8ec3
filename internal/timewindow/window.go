// Package timewindow holds the pure time arithmetic used by scheduling:
// half-open windows, overlap tests and the business-hour policy.
package timewindow

import (
	"fmt"
	"time"
)

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func New(start time.Time, durationMinutes int) Window {
	return Window{Start: start, End: start.Add(Minutes(durationMinutes))}
}

func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// Overlaps reports whether w and o intersect. Windows that only touch
// (one ends exactly when the other starts) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return Overlaps(w.Start, w.End, o.Start, o.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
