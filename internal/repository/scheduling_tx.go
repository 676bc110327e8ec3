package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InSchedulingTx takes transaction-scoped advisory locks on every key, in
// sorted order so concurrent callers cannot deadlock, and then runs fn.
func (r *Repository) InSchedulingTx(ctx context.Context, lockKeys []string, fn func(tx SchedulingTx) error) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		for _, key := range sortedUnique(lockKeys) {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
				return fmt.Errorf("lock %s: %w", key, err)
			}
		}
		return fn(&schedulingTx{tx: tx})
	})
}

type schedulingTx struct {
	tx pgx.Tx
}

func (s *schedulingTx) GetInterview(ctx context.Context, interviewID uuid.UUID) (*model.Interview, error) {
	return getInterview(ctx, s.tx, interviewID, true)
}

func (s *schedulingTx) BusyWindows(ctx context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	return busyWindows(ctx, s.tx, participantIDs, from, to, exclude)
}

func (s *schedulingTx) HasScheduledForApplication(ctx context.Context, jobApplicationID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM interviews WHERE job_application_id = $1 AND status = 'scheduled')`
	var exists bool
	if err := s.tx.QueryRow(ctx, q, jobApplicationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check scheduled interview: %w", err)
	}
	return exists, nil
}

func (s *schedulingTx) MaxRoundNumber(ctx context.Context, jobApplicationID uuid.UUID) (int, error) {
	const q = `SELECT COALESCE(MAX(round_number), 0) FROM interviews WHERE job_application_id = $1`
	var n int
	if err := s.tx.QueryRow(ctx, q, jobApplicationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("max round number: %w", err)
	}
	return n, nil
}

func (s *schedulingTx) InsertInterview(ctx context.Context, i *model.Interview) error {
	const q = `
INSERT INTO interviews (
	interview_id, job_application_id, round_number, scheduled_at, duration_minutes,
	status, type, mode, meeting_details, instructions, scheduled_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
`
	_, err := s.tx.Exec(ctx, q,
		i.InterviewID, i.JobApplicationID, i.RoundNumber, i.ScheduledAt, i.DurationMinutes,
		string(i.Status), string(i.Type), string(i.Mode), i.MeetingDetails, i.Instructions,
		i.ScheduledBy, i.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert interview: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert interview: %w", err)
	}

	const pq = `
INSERT INTO interview_participants (interview_id, user_id, role, is_lead)
VALUES ($1, $2, $3, $4)
`
	batch := &pgx.Batch{}
	for _, p := range i.Participants {
		batch.Queue(pq, i.InterviewID, p.UserID, string(p.Role), p.IsLead)
	}
	br := s.tx.SendBatch(ctx, batch)
	defer br.Close()
	for range i.Participants {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert participant: %w", ErrDuplicate)
			}
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return nil
}

func (s *schedulingTx) Reschedule(ctx context.Context, interviewID uuid.UUID, rec model.RescheduleRecord) error {
	const q = `
UPDATE interviews SET
	scheduled_at = $2,
	duration_minutes = $3,
	reminder_sent_at = NULL,
	updated_at = $4
WHERE interview_id = $1 AND status = 'scheduled'
`
	tag, err := s.tx.Exec(ctx, q, interviewID, rec.NewScheduledAt, rec.NewDurationMinutes, rec.RescheduledAt)
	if err != nil {
		return fmt.Errorf("update interview slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusChanged
	}

	const aq = `
INSERT INTO interview_reschedules (
	interview_id, previous_scheduled_at, previous_duration_minutes,
	new_scheduled_at, new_duration_minutes, rescheduled_by, rescheduled_at, reason
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	if _, err := s.tx.Exec(ctx, aq, interviewID, rec.PreviousScheduledAt, rec.PreviousDurationMinutes,
		rec.NewScheduledAt, rec.NewDurationMinutes, rec.RescheduledBy, rec.RescheduledAt, rec.Reason); err != nil {
		return fmt.Errorf("insert reschedule record: %w", err)
	}
	return nil
}
