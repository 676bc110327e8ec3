package scheduling

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/internal/timewindow"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const availabilityChunk = 64

type AvailabilityComputer struct {
	store busyReader
	opts  options
}

func (a *AvailabilityComputer) Policy() timewindow.Policy {
	return a.opts.policy
}

// ValidateTimeSlot checks the slot against the policy at the current time.
// It returns a *apperr.ValidationError listing every violated rule.
func (a *AvailabilityComputer) ValidateTimeSlot(start time.Time, durationMinutes int) error {
	return a.opts.policy.ValidateTimeSlot(start, durationMinutes, a.opts.now())
}

// GetAvailableSlots returns, in ascending order, every candidate start
// rangeStart + k*step whose window fits in the range, passes ValidateTimeSlot
// and overlaps no scheduled interview of any participant. stepMinutes <= 0
// selects the policy step.
func (a *AvailabilityComputer) GetAvailableSlots(ctx context.Context, participantIDs []uuid.UUID, rangeStart, rangeEnd time.Time, durationMinutes, stepMinutes int) ([]timewindow.Window, error) {
	p := a.opts.policy
	if stepMinutes <= 0 {
		stepMinutes = p.StepMinutes
	}
	rangeStart, rangeEnd = rangeStart.UTC(), rangeEnd.UTC()

	verr := &apperr.ValidationError{}
	if len(participantIDs) == 0 {
		verr.Add(apperr.RuleInput, "at least one participant is required")
	}
	if !rangeEnd.After(rangeStart) {
		verr.Add(apperr.RuleRange, "range end %s is not after start %s", rangeEnd.Format(time.RFC3339), rangeStart.Format(time.RFC3339))
	} else if rangeEnd.Sub(rangeStart) > time.Duration(p.MaxRangeDays)*24*time.Hour {
		verr.Add(apperr.RuleRange, "range exceeds %d days", p.MaxRangeDays)
	}
	if durationMinutes < p.MinDurationMinutes || durationMinutes > p.MaxDurationMinutes {
		verr.Add(apperr.RuleDurationBounds, "duration %d minutes is outside %d-%d",
			durationMinutes, p.MinDurationMinutes, p.MaxDurationMinutes)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	busy, err := a.store.BusyWindows(ctx, participantIDs, rangeStart, rangeEnd, nil)
	if err != nil {
		return nil, fmt.Errorf("load busy windows: %w", err)
	}

	candidates := p.Candidates(rangeStart, rangeEnd, durationMinutes, stepMinutes)
	free := make([]bool, len(candidates))
	now := a.opts.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < len(candidates); lo += availabilityChunk {
		lo, hi := lo, min(lo+availabilityChunk, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for k := lo; k < hi; k++ {
				free[k] = slotIsFree(p, candidates[k], durationMinutes, now, busy)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]timewindow.Window, 0, len(candidates))
	for k, c := range candidates {
		if free[k] {
			out = append(out, c)
		}
	}
	return out, nil
}

func slotIsFree(p timewindow.Policy, w timewindow.Window, durationMinutes int, now time.Time, busy []model.BusyWindow) bool {
	if p.ValidateTimeSlot(w.Start, durationMinutes, now) != nil {
		return false
	}
	for _, b := range busy {
		if timewindow.Overlaps(w.Start, w.End, b.Start, b.End) {
			return false
		}
	}
	return true
}
