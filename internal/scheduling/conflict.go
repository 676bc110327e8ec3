package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/abhishek622/interviewflow/internal/timewindow"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
)

// busyReader is satisfied by the store and by a scheduling transaction, so
// the same check runs inside and outside the lock.
type busyReader interface {
	BusyWindows(ctx context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error)
}

type ConflictDetector struct {
	store busyReader
}

// HasConflict reports whether any scheduled interview of the participants
// overlaps [start, start+duration). exclude skips one interview, the one
// being rescheduled.
func (d *ConflictDetector) HasConflict(ctx context.Context, participantIDs []uuid.UUID, start time.Time, durationMinutes int, exclude *uuid.UUID) (bool, error) {
	conflicts, err := d.FindConflicts(ctx, participantIDs, start, durationMinutes, exclude)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

func (d *ConflictDetector) FindConflicts(ctx context.Context, participantIDs []uuid.UUID, start time.Time, durationMinutes int, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	return findConflicts(ctx, d.store, participantIDs, timewindow.New(start, durationMinutes), exclude)
}

func findConflicts(ctx context.Context, r busyReader, participantIDs []uuid.UUID, w timewindow.Window, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}
	busy, err := r.BusyWindows(ctx, participantIDs, w.Start, w.End, exclude)
	if err != nil {
		return nil, fmt.Errorf("load busy windows: %w", err)
	}
	// The store already filters by range; recheck so the overlap rule lives
	// in one place.
	out := busy[:0]
	for _, b := range busy {
		if timewindow.Overlaps(w.Start, w.End, b.Start, b.End) {
			out = append(out, b)
		}
	}
	return out, nil
}
