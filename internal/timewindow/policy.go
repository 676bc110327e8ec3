package timewindow

import (
	"fmt"
	"time"

	"github.com/abhishek622/interviewflow/internal/apperr"
)

// Policy carries the business-hour and duration rules a slot must satisfy.
type Policy struct {
	Location           *time.Location
	OpenMinute         int // minutes after local midnight
	CloseMinute        int
	Workdays           []time.Weekday
	MinDurationMinutes int
	MaxDurationMinutes int
	StepMinutes        int
	MaxRangeDays       int
}

func DefaultPolicy() Policy {
	return Policy{
		Location:           time.UTC,
		OpenMinute:         9 * 60,
		CloseMinute:        18 * 60,
		Workdays:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		MinDurationMinutes: 15,
		MaxDurationMinutes: 240,
		StepMinutes:        30,
		MaxRangeDays:       31,
	}
}

func (p Policy) Validate() error {
	if p.Location == nil {
		return fmt.Errorf("policy: location is required")
	}
	if p.OpenMinute < 0 || p.CloseMinute > 24*60 || p.OpenMinute >= p.CloseMinute {
		return fmt.Errorf("policy: business hours %s-%s are invalid", FormatClock(p.OpenMinute), FormatClock(p.CloseMinute))
	}
	if len(p.Workdays) == 0 {
		return fmt.Errorf("policy: at least one workday is required")
	}
	if p.MinDurationMinutes < 1 || p.MaxDurationMinutes < p.MinDurationMinutes {
		return fmt.Errorf("policy: duration bounds %d-%d are invalid", p.MinDurationMinutes, p.MaxDurationMinutes)
	}
	if p.StepMinutes < 1 {
		return fmt.Errorf("policy: step must be positive")
	}
	if p.MaxRangeDays < 1 {
		return fmt.Errorf("policy: max range must be at least one day")
	}
	return nil
}

func (p Policy) isWorkday(d time.Weekday) bool {
	for _, w := range p.Workdays {
		if w == d {
			return true
		}
	}
	return false
}

// ValidateTimeSlot checks every rule and reports all violations together.
// now is the reference instant for the "strictly in the future" rule.
func (p Policy) ValidateTimeSlot(start time.Time, durationMinutes int, now time.Time) error {
	verr := &apperr.ValidationError{}

	if !start.After(now) {
		verr.Add(apperr.RuleStartInFuture, "start %s is not after %s", start.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	if durationMinutes < p.MinDurationMinutes || durationMinutes > p.MaxDurationMinutes {
		verr.Add(apperr.RuleDurationBounds, "duration %d minutes is outside %d-%d",
			durationMinutes, p.MinDurationMinutes, p.MaxDurationMinutes)
	}

	local := start.In(p.Location)
	if !p.isWorkday(local.Weekday()) {
		verr.Add(apperr.RuleWeekday, "%s is not a working day", local.Weekday())
	}

	y, m, d := local.Date()
	// Wall-clock bounds; midnight plus a duration drifts on DST change days.
	open := time.Date(y, m, d, p.OpenMinute/60, p.OpenMinute%60, 0, 0, p.Location)
	closing := time.Date(y, m, d, p.CloseMinute/60, p.CloseMinute%60, 0, 0, p.Location)
	end := local.Add(Minutes(durationMinutes))
	if local.Before(open) || end.After(closing) {
		verr.Add(apperr.RuleBusinessHours, "%s-%s is outside business hours %s-%s",
			local.Format("15:04"), end.Format("15:04"), FormatClock(p.OpenMinute), FormatClock(p.CloseMinute))
	}

	return verr.OrNil()
}

// Candidates enumerates start times rangeStart + k*step whose window still
// ends within rangeEnd, in ascending order.
func (p Policy) Candidates(rangeStart, rangeEnd time.Time, durationMinutes, stepMinutes int) []Window {
	step := Minutes(stepMinutes)
	length := Minutes(durationMinutes)
	var out []Window
	for t := rangeStart; !t.Add(length).After(rangeEnd); t = t.Add(step) {
		out = append(out, Window{Start: t, End: t.Add(length)})
	}
	return out
}
