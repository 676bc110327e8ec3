package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/internal/timewindow"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle owns every status change of an interview.
type Lifecycle struct {
	store        repository.Store
	apps         ApplicationLookup
	notifier     Notifier
	availability *AvailabilityComputer
	opts         options
}

func (l *Lifecycle) load(ctx context.Context, interviewID uuid.UUID) (*model.Interview, error) {
	return loadInterview(ctx, l.store, interviewID)
}

func (l *Lifecycle) staleState(ctx context.Context, interviewID uuid.UUID, op Operation) error {
	return staleState(ctx, l.store, interviewID, op)
}

func loadInterview(ctx context.Context, store repository.Store, interviewID uuid.UUID) (*model.Interview, error) {
	i, err := store.GetInterview(ctx, interviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("interview", interviewID)
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return i, nil
}

// staleState turns a lost guarded update into a StateError carrying the
// status the interview actually has now.
func staleState(ctx context.Context, store repository.Store, interviewID uuid.UUID, op Operation) error {
	current, err := loadInterview(ctx, store, interviewID)
	if err != nil {
		return err
	}
	return &apperr.StateError{InterviewID: interviewID, Current: current.Status, Operation: string(op)}
}

func (l *Lifecycle) notify(ctx context.Context, t model.EventType, i *model.Interview, actor uuid.UUID) {
	if l.notifier == nil {
		return
	}
	event := model.NewInterviewEvent(t, i, &actor, l.opts.now())
	if err := l.notifier.NotifyInterviewEvent(ctx, event); err != nil {
		l.opts.logger.Warn("notify interview event failed",
			zap.String("interview_id", i.InterviewID.String()),
			zap.String("event", string(t)),
			zap.Error(err),
		)
		l.opts.metrics.NotifyFailed(string(t))
	}
}

func requireScheduler(actor model.ActorContext, action string) error {
	if actor.IsPrivilegedStaff() || actor.IsRecruiter() {
		return nil
	}
	return apperr.Forbidden(action, "requires privileged staff or recruiter role")
}

func validateScheduleInput(req model.ScheduleInterviewReq) ([]model.Participant, error) {
	verr := &apperr.ValidationError{}
	if !req.Type.IsValid() {
		verr.Add(apperr.RuleInput, "unknown interview type %q", req.Type)
	}
	if !req.Mode.IsValid() {
		verr.Add(apperr.RuleInput, "unknown interview mode %q", req.Mode)
	}
	if len(req.Participants) == 0 {
		verr.Add(apperr.RuleInput, "at least one participant is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Participants))
	participants := make([]model.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p.UserID == uuid.Nil {
			verr.Add(apperr.RuleInput, "participant user id is required")
			continue
		}
		if !p.Role.IsValid() {
			verr.Add(apperr.RuleInput, "participant %s has unknown role %q", p.UserID, p.Role)
		}
		if _, dup := seen[p.UserID]; dup {
			verr.Add(apperr.RuleInput, "participant %s is listed more than once", p.UserID)
			continue
		}
		seen[p.UserID] = struct{}{}
		participants = append(participants, model.Participant{
			UserID: p.UserID,
			Role:   p.Role,
			IsLead: p.IsLead || p.Role == model.ParticipantLead,
		})
	}
	return participants, verr.OrNil()
}

// CanScheduleInterview reports whether the application may get a new round:
// its status must allow interviewing and it must have no scheduled interview.
// Schedule repeats the second check under the application lock.
func (l *Lifecycle) CanScheduleInterview(ctx context.Context, jobApplicationID uuid.UUID) (bool, error) {
	status, err := l.apps.GetApplicationStatus(ctx, jobApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperr.NotFound("job application", jobApplicationID)
		}
		return false, fmt.Errorf("get application status: %w", err)
	}
	if !status.AllowsInterview() {
		return false, nil
	}
	scheduled := []model.Status{model.StatusScheduled}
	_, total, err := l.store.SearchInterviews(ctx, model.InterviewQuery{
		Filter: model.InterviewFilter{Status: &scheduled, JobApplicationID: &jobApplicationID},
		Limit:  1,
	})
	if err != nil {
		return false, fmt.Errorf("search scheduled interviews: %w", err)
	}
	return total == 0, nil
}

func (l *Lifecycle) Schedule(ctx context.Context, actor model.ActorContext, req model.ScheduleInterviewReq) (*model.Interview, error) {
	if err := requireScheduler(actor, "schedule interview"); err != nil {
		return nil, err
	}
	participants, err := validateScheduleInput(req)
	if err != nil {
		return nil, err
	}
	start := req.ScheduledAt.UTC()
	if err := l.availability.ValidateTimeSlot(start, req.DurationMinutes); err != nil {
		return nil, err
	}

	status, err := l.apps.GetApplicationStatus(ctx, req.JobApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("job application", req.JobApplicationID)
		}
		return nil, fmt.Errorf("get application status: %w", err)
	}
	if !status.AllowsInterview() {
		return nil, apperr.Invalid(apperr.RuleApplicationStatus, "application %s is %s and cannot be interviewed", req.JobApplicationID, status)
	}

	now := l.opts.now()
	interview := &model.Interview{
		InterviewID:      uuid.New(),
		JobApplicationID: req.JobApplicationID,
		ScheduledAt:      start,
		DurationMinutes:  req.DurationMinutes,
		Status:           model.StatusScheduled,
		Type:             req.Type,
		Mode:             req.Mode,
		MeetingDetails:   req.MeetingDetails,
		Instructions:     req.Instructions,
		ScheduledBy:      actor.UserID,
		Participants:     participants,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	window := timewindow.New(start, req.DurationMinutes)
	ids := interview.ParticipantIDs()

	keys := []string{repository.LockKeyApplication(req.JobApplicationID)}
	for _, id := range ids {
		keys = append(keys, repository.LockKeyParticipant(id))
	}

	err = l.store.InSchedulingTx(ctx, keys, func(tx repository.SchedulingTx) error {
		conflicts, err := findConflicts(ctx, tx, ids, window, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &apperr.ConflictError{Start: window.Start, End: window.End, Conflicts: conflicts}
		}

		busy, err := tx.HasScheduledForApplication(ctx, req.JobApplicationID)
		if err != nil {
			return err
		}
		if busy {
			return &apperr.ConflictError{Start: window.Start, End: window.End,
				Reason: fmt.Sprintf("application %s already has a scheduled interview", req.JobApplicationID)}
		}

		round, err := tx.MaxRoundNumber(ctx, req.JobApplicationID)
		if err != nil {
			return err
		}
		interview.RoundNumber = round + 1

		if err := tx.InsertInterview(ctx, interview); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &apperr.ConflictError{Start: window.Start, End: window.End,
					Reason: fmt.Sprintf("round %d of application %s was taken concurrently", interview.RoundNumber, req.JobApplicationID)}
			}
			return err
		}
		return nil
	})
	if err != nil {
		var cerr *apperr.ConflictError
		if errors.As(err, &cerr) {
			l.opts.metrics.Conflict()
		}
		return nil, err
	}

	l.opts.metrics.Scheduled()
	l.opts.logger.Info("interview scheduled",
		zap.String("interview_id", interview.InterviewID.String()),
		zap.String("job_application_id", req.JobApplicationID.String()),
		zap.Int("round", interview.RoundNumber),
	)
	l.notify(ctx, model.EventScheduled, interview, actor.UserID)
	return interview.Clone(), nil
}

// Reschedule moves a scheduled interview to a new slot. The round number and
// participants stay; the previous slot is kept in the audit trail.
func (l *Lifecycle) Reschedule(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID, req model.RescheduleInterviewReq) (*model.Interview, error) {
	if err := requireScheduler(actor, "reschedule interview"); err != nil {
		return nil, err
	}
	current, err := l.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if _, ok := nextStatus(current.Status, OpReschedule); !ok {
		return nil, &apperr.StateError{InterviewID: interviewID, Current: current.Status, Operation: string(OpReschedule)}
	}

	duration := current.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	start := req.ScheduledAt.UTC()
	if err := l.availability.ValidateTimeSlot(start, duration); err != nil {
		return nil, err
	}

	window := timewindow.New(start, duration)
	ids := current.ParticipantIDs()
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, repository.LockKeyParticipant(id))
	}

	err = l.store.InSchedulingTx(ctx, keys, func(tx repository.SchedulingTx) error {
		locked, err := tx.GetInterview(ctx, interviewID)
		if err != nil {
			return err
		}
		if locked.Status != model.StatusScheduled {
			return &apperr.StateError{InterviewID: interviewID, Current: locked.Status, Operation: string(OpReschedule)}
		}

		conflicts, err := findConflicts(ctx, tx, ids, window, &interviewID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &apperr.ConflictError{Start: window.Start, End: window.End, Conflicts: conflicts}
		}

		return tx.Reschedule(ctx, interviewID, model.RescheduleRecord{
			PreviousScheduledAt:     locked.ScheduledAt,
			PreviousDurationMinutes: locked.DurationMinutes,
			NewScheduledAt:          start,
			NewDurationMinutes:      duration,
			RescheduledBy:           actor.UserID,
			RescheduledAt:           l.opts.now(),
			Reason:                  req.Reason,
		})
	})
	if err != nil {
		var cerr *apperr.ConflictError
		switch {
		case errors.As(err, &cerr):
			l.opts.metrics.Conflict()
			return nil, err
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, l.staleState(ctx, interviewID, OpReschedule)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("interview", interviewID)
		}
		return nil, err
	}

	updated, err := l.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	l.opts.metrics.Transition(string(OpReschedule))
	l.notify(ctx, model.EventRescheduled, updated, actor.UserID)
	return updated, nil
}

// transition applies one status-only operation from the table after
// authorize accepts the actor.
func (l *Lifecycle) transition(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID, op Operation,
	authorize func(*model.Interview) error, reason *string, event model.EventType) (*model.Interview, error) {
	current, err := l.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(current); err != nil {
		return nil, err
	}
	to, ok := nextStatus(current.Status, op)
	if !ok {
		return nil, &apperr.StateError{InterviewID: interviewID, Current: current.Status, Operation: string(op)}
	}

	updated, err := l.store.TransitionStatus(ctx, interviewID, current.Status, repository.StatusChange{
		To:                 to,
		At:                 l.opts.now(),
		CancellationReason: reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, l.staleState(ctx, interviewID, op)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("interview", interviewID)
		}
		return nil, fmt.Errorf("transition interview: %w", err)
	}

	l.opts.metrics.Transition(string(op))
	l.notify(ctx, event, updated, actor.UserID)
	return updated, nil
}

func (l *Lifecycle) Cancel(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID, req model.CancelInterviewReq) (*model.Interview, error) {
	return l.transition(ctx, actor, interviewID, OpCancel, func(*model.Interview) error {
		return requireScheduler(actor, "cancel interview")
	}, req.Reason, model.EventCancelled)
}

func (l *Lifecycle) MarkCompleted(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID) (*model.Interview, error) {
	return l.transition(ctx, actor, interviewID, OpComplete, func(i *model.Interview) error {
		if actor.IsPrivilegedStaff() || i.HasParticipant(actor.UserID) {
			return nil
		}
		return apperr.Forbidden("complete interview", "requires a participant or privileged staff")
	}, nil, model.EventCompleted)
}

func (l *Lifecycle) MarkNoShow(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID) (*model.Interview, error) {
	return l.transition(ctx, actor, interviewID, OpNoShow, func(i *model.Interview) error {
		if actor.IsPrivilegedStaff() || actor.IsRecruiter() || i.HasParticipant(actor.UserID) {
			return nil
		}
		return apperr.Forbidden("mark no-show", "requires a participant, recruiter or privileged staff")
	}, nil, model.EventNoShow)
}

// UpdateNotes edits the free-text fields. Summary notes may change in any
// status but cancelled; meeting details and instructions only while the
// interview is still scheduled.
func (l *Lifecycle) UpdateNotes(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID, req model.PatchNotesReq) (*model.Interview, error) {
	const op = "update_notes"
	current, err := l.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivilegedStaff() && !actor.IsRecruiter() && !current.HasParticipant(actor.UserID) {
		return nil, apperr.Forbidden("update interview notes", "requires a participant, recruiter or privileged staff")
	}
	if req.SummaryNotes == nil && req.MeetingDetails == nil && req.Instructions == nil {
		return nil, apperr.Invalid(apperr.RuleInput, "no fields to update")
	}
	if current.Status == model.StatusCancelled {
		return nil, &apperr.StateError{InterviewID: interviewID, Current: current.Status, Operation: op}
	}
	if (req.MeetingDetails != nil || req.Instructions != nil) && current.Status != model.StatusScheduled {
		return nil, &apperr.StateError{InterviewID: interviewID, Current: current.Status, Operation: op}
	}

	updated, err := l.store.UpdateNotes(ctx, interviewID, repository.NotesChange{
		ExpectStatus:   current.Status,
		SummaryNotes:   req.SummaryNotes,
		MeetingDetails: req.MeetingDetails,
		Instructions:   req.Instructions,
		At:             l.opts.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, l.staleState(ctx, interviewID, op)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("interview", interviewID)
		}
		return nil, fmt.Errorf("update notes: %w", err)
	}
	return updated, nil
}
