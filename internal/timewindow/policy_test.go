package timewindow

import (
	"errors"
	"testing"
	"time"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func violations(t *testing.T, err error) *apperr.ValidationError {
	t.Helper()
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := New(at(10, 10, 0), 60)

	assert.True(t, a.Overlaps(New(at(10, 10, 30), 60)))
	assert.True(t, a.Overlaps(New(at(10, 9, 30), 60)))
	assert.True(t, a.Overlaps(New(at(10, 10, 15), 15)), "contained window")
	assert.False(t, a.Overlaps(New(at(10, 11, 0), 30)), "starts when a ends")
	assert.False(t, a.Overlaps(New(at(10, 9, 0), 60)), "ends when a starts")
}

func TestValidateTimeSlotAcceptsBusinessHours(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name     string
		start    time.Time
		duration int
	}{
		{"opening minute", at(10, 9, 0), 60},
		{"ends at closing", at(10, 17, 0), 60},
		{"min duration", at(11, 12, 0), 15},
		{"max duration", at(12, 9, 0), 240},
		{"friday", at(14, 14, 0), 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, p.ValidateTimeSlot(tt.start, tt.duration, refNow))
		})
	}
}

func TestValidateTimeSlotRejects(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name     string
		start    time.Time
		duration int
		rule     apperr.Rule
	}{
		{"saturday", at(8, 10, 0), 60, apperr.RuleWeekday},
		{"sunday", at(9, 10, 0), 60, apperr.RuleWeekday},
		{"before opening", at(10, 8, 30), 60, apperr.RuleBusinessHours},
		{"runs past closing", at(10, 17, 30), 60, apperr.RuleBusinessHours},
		{"starts at closing", at(10, 18, 0), 15, apperr.RuleBusinessHours},
		{"too short", at(10, 10, 0), 14, apperr.RuleDurationBounds},
		{"too long", at(10, 9, 0), 241, apperr.RuleDurationBounds},
		{"in the past", at(1, 10, 0), 60, apperr.RuleStartInFuture},
		{"exactly now", refNow, 30, apperr.RuleStartInFuture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateTimeSlot(tt.start, tt.duration, refNow)
			assert.True(t, violations(t, err).Has(tt.rule), "expected %s in %v", tt.rule, err)
		})
	}
}

func TestValidateTimeSlotReportsEveryViolation(t *testing.T) {
	p := DefaultPolicy()
	// Saturday 07:00 for 300 minutes, a week before now.
	err := p.ValidateTimeSlot(time.Date(2024, 5, 25, 7, 0, 0, 0, time.UTC), 300, refNow)
	verr := violations(t, err)
	for _, rule := range []apperr.Rule{apperr.RuleStartInFuture, apperr.RuleWeekday, apperr.RuleBusinessHours, apperr.RuleDurationBounds} {
		assert.True(t, verr.Has(rule), "missing %s", rule)
	}
}

func TestValidateTimeSlotUsesPolicyLocation(t *testing.T) {
	p := DefaultPolicy()
	p.Location = time.FixedZone("UTC+5", 5*60*60)

	// 05:00 UTC is 10:00 local.
	assert.NoError(t, p.ValidateTimeSlot(at(10, 5, 0), 60, refNow))
	// 10:00 UTC is 15:00 local, 240 minutes runs to 19:00 local.
	assert.True(t, violations(t, p.ValidateTimeSlot(at(10, 10, 0), 240, refNow)).Has(apperr.RuleBusinessHours))
}

func TestValidateTimeSlotOnDSTChangeDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	p := DefaultPolicy()
	p.Location = loc
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Friday 2024-03-29 starts at 02:00 local and skips to 03:00.
	nine := time.Date(2024, 3, 29, 9, 0, 0, 0, loc)
	assert.NoError(t, p.ValidateTimeSlot(nine, 60, now))
	assert.NoError(t, p.ValidateTimeSlot(time.Date(2024, 3, 29, 17, 0, 0, 0, loc), 60, now))

	late := time.Date(2024, 3, 29, 17, 30, 0, 0, loc)
	assert.True(t, violations(t, p.ValidateTimeSlot(late, 60, now)).Has(apperr.RuleBusinessHours))

	early := time.Date(2024, 3, 29, 8, 30, 0, 0, loc)
	assert.True(t, violations(t, p.ValidateTimeSlot(early, 60, now)).Has(apperr.RuleBusinessHours))
}

func TestCandidatesFitInsideRange(t *testing.T) {
	p := DefaultPolicy()
	got := p.Candidates(at(10, 9, 0), at(10, 11, 0), 60, 30)
	require.Len(t, got, 3)
	assert.Equal(t, at(10, 9, 0), got[0].Start)
	assert.Equal(t, at(10, 10, 0), got[2].Start)
	assert.Equal(t, at(10, 11, 0), got[2].End)

	assert.Empty(t, p.Candidates(at(10, 9, 0), at(10, 9, 30), 60, 30))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)
	assert.Equal(t, "09:30", FormatClock(m))

	_, err = ParseClock("9am")
	assert.Error(t, err)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.OpenMinute, p.CloseMinute = 18*60, 9*60
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.MaxDurationMinutes = 10
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.StepMinutes = 0
	assert.Error(t, p.Validate())
}
