package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const interviewColumns = `
	interview_id, job_application_id, round_number, scheduled_at, duration_minutes,
	status, type, mode, outcome, summary_notes, meeting_details, instructions,
	cancellation_reason, scheduled_by, outcome_set_by, outcome_set_at, completed_at,
	reminder_sent_at, created_at, updated_at`

func scanInterview(row pgx.Row) (*model.Interview, error) {
	var i model.Interview
	err := row.Scan(
		&i.InterviewID, &i.JobApplicationID, &i.RoundNumber, &i.ScheduledAt, &i.DurationMinutes,
		&i.Status, &i.Type, &i.Mode, &i.Outcome, &i.SummaryNotes, &i.MeetingDetails, &i.Instructions,
		&i.CancellationReason, &i.ScheduledBy, &i.OutcomeSetBy, &i.OutcomeSetAt, &i.CompletedAt,
		&i.ReminderSentAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.ScheduledAt = i.ScheduledAt.UTC()
	return &i, nil
}

func getInterview(ctx context.Context, db dbtx, interviewID uuid.UUID, forUpdate bool) (*model.Interview, error) {
	q := `SELECT ` + interviewColumns + ` FROM interviews WHERE interview_id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	i, err := scanInterview(db.QueryRow(ctx, q, interviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan interview: %w", err)
	}
	if err := attachParticipants(ctx, db, []*model.Interview{i}); err != nil {
		return nil, err
	}
	if err := attachReschedules(ctx, db, i); err != nil {
		return nil, err
	}
	return i, nil
}

func attachParticipants(ctx context.Context, db dbtx, interviews []*model.Interview) error {
	if len(interviews) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*model.Interview, len(interviews))
	ids := make([]uuid.UUID, 0, len(interviews))
	for _, i := range interviews {
		byID[i.InterviewID] = i
		ids = append(ids, i.InterviewID)
	}

	const q = `
SELECT interview_id, user_id, role, is_lead
FROM interview_participants
WHERE interview_id = ANY($1::uuid[])
ORDER BY interview_id, user_id
`
	rows, err := db.Query(ctx, q, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var interviewID uuid.UUID
		var p model.Participant
		if err := rows.Scan(&interviewID, &p.UserID, &p.Role, &p.IsLead); err != nil {
			return fmt.Errorf("scan participant row: %w", err)
		}
		if i, ok := byID[interviewID]; ok {
			i.Participants = append(i.Participants, p)
		}
	}
	if rows.Err() != nil {
		return fmt.Errorf("rows error: %w", rows.Err())
	}
	return nil
}

func attachReschedules(ctx context.Context, db dbtx, i *model.Interview) error {
	const q = `
SELECT previous_scheduled_at, previous_duration_minutes, new_scheduled_at, new_duration_minutes,
	rescheduled_by, rescheduled_at, reason
FROM interview_reschedules
WHERE interview_id = $1
ORDER BY rescheduled_at, id
`
	rows, err := db.Query(ctx, q, i.InterviewID)
	if err != nil {
		return fmt.Errorf("query reschedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.RescheduleRecord
		if err := rows.Scan(
			&rec.PreviousScheduledAt, &rec.PreviousDurationMinutes, &rec.NewScheduledAt, &rec.NewDurationMinutes,
			&rec.RescheduledBy, &rec.RescheduledAt, &rec.Reason,
		); err != nil {
			return fmt.Errorf("scan reschedule row: %w", err)
		}
		i.Reschedules = append(i.Reschedules, rec)
	}
	if rows.Err() != nil {
		return fmt.Errorf("rows error: %w", rows.Err())
	}
	return nil
}

func busyWindows(ctx context.Context, db dbtx, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	const q = `
SELECT i.interview_id, p.user_id, i.scheduled_at, i.duration_minutes
FROM interviews i
JOIN interview_participants p ON p.interview_id = i.interview_id
WHERE i.status = 'scheduled'
	AND p.user_id = ANY($1::uuid[])
	AND i.scheduled_at < $3
	AND i.scheduled_at + make_interval(mins => i.duration_minutes) > $2
	AND ($4::uuid IS NULL OR i.interview_id <> $4::uuid)
ORDER BY i.scheduled_at, p.user_id
`
	var excludeArg *string
	if exclude != nil {
		s := exclude.String()
		excludeArg = &s
	}

	rows, err := db.Query(ctx, q, uuidStrings(participantIDs), from, to, excludeArg)
	if err != nil {
		return nil, fmt.Errorf("query busy windows: %w", err)
	}
	defer rows.Close()

	var out []model.BusyWindow
	for rows.Next() {
		var b model.BusyWindow
		var duration int
		if err := rows.Scan(&b.InterviewID, &b.UserID, &b.Start, &duration); err != nil {
			return nil, fmt.Errorf("scan busy window row: %w", err)
		}
		b.Start = b.Start.UTC()
		b.End = b.Start.Add(time.Duration(duration) * time.Minute)
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}

func (r *Repository) GetInterview(ctx context.Context, interviewID uuid.UUID) (*model.Interview, error) {
	return getInterview(ctx, r.db, interviewID, false)
}

func (r *Repository) BusyWindows(ctx context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	return busyWindows(ctx, r.db, participantIDs, from, to, exclude)
}

// guardMiss tells a missing row apart from a row whose status moved on.
func (r *Repository) guardMiss(ctx context.Context, interviewID uuid.UUID) error {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM interviews WHERE interview_id = $1)`
	if err := r.db.QueryRow(ctx, q, interviewID).Scan(&exists); err != nil {
		return fmt.Errorf("check interview exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func (r *Repository) TransitionStatus(ctx context.Context, interviewID uuid.UUID, from model.Status, change StatusChange) (*model.Interview, error) {
	const q = `
UPDATE interviews SET
	status = $2,
	updated_at = $3,
	completed_at = CASE WHEN $2 = 'completed' THEN $3 ELSE completed_at END,
	cancellation_reason = COALESCE($4, cancellation_reason)
WHERE interview_id = $1 AND status = $5
`
	tag, err := r.db.Exec(ctx, q, interviewID, string(change.To), change.At, change.CancellationReason, string(from))
	if err != nil {
		return nil, fmt.Errorf("update interview status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.guardMiss(ctx, interviewID)
	}
	return r.GetInterview(ctx, interviewID)
}

func (r *Repository) SetOutcome(ctx context.Context, interviewID uuid.UUID, change OutcomeChange) (*model.Interview, error) {
	const q = `
UPDATE interviews SET outcome = $2, outcome_set_by = $3, outcome_set_at = $4, updated_at = $4
WHERE interview_id = $1 AND status = 'completed'
`
	tag, err := r.db.Exec(ctx, q, interviewID, string(change.Outcome), change.SetBy, change.At)
	if err != nil {
		return nil, fmt.Errorf("update interview outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.guardMiss(ctx, interviewID)
	}
	return r.GetInterview(ctx, interviewID)
}

func (r *Repository) UpdateNotes(ctx context.Context, interviewID uuid.UUID, change NotesChange) (*model.Interview, error) {
	const q = `
UPDATE interviews SET
	summary_notes = COALESCE($2, summary_notes),
	meeting_details = COALESCE($3, meeting_details),
	instructions = COALESCE($4, instructions),
	updated_at = $5
WHERE interview_id = $1 AND status = $6
`
	tag, err := r.db.Exec(ctx, q, interviewID, change.SummaryNotes, change.MeetingDetails, change.Instructions, change.At, string(change.ExpectStatus))
	if err != nil {
		return nil, fmt.Errorf("update interview notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.guardMiss(ctx, interviewID)
	}
	return r.GetInterview(ctx, interviewID)
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func (r *Repository) SearchInterviews(ctx context.Context, q model.InterviewQuery) ([]model.Interview, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	f := q.Filter
	if f.Status != nil {
		where = append(where, "i.status = ANY("+arg(enumStrings(*f.Status))+")")
	}
	if f.Type != nil {
		where = append(where, "i.type = ANY("+arg(enumStrings(*f.Type))+")")
	}
	if f.Mode != nil {
		where = append(where, "i.mode = ANY("+arg(enumStrings(*f.Mode))+")")
	}
	if f.From != nil {
		where = append(where, "i.scheduled_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "i.scheduled_at < "+arg(*f.To))
	}
	if f.JobApplicationID != nil {
		where = append(where, "i.job_application_id = "+arg(*f.JobApplicationID))
	}
	if q.Scoped {
		where = append(where, fmt.Sprintf(`(i.job_application_id = ANY(%s::uuid[]) OR EXISTS (
	SELECT 1 FROM interview_participants p WHERE p.interview_id = i.interview_id AND p.user_id = %s))`,
			arg(uuidStrings(q.ScopeApplicationIDs)), arg(q.ScopeParticipantID)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(1) FROM interviews i WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count interviews: %w", err)
	}

	order := "DESC"
	if q.Order == model.SortAsc {
		order = "ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM interviews i WHERE %s ORDER BY i.scheduled_at %s, i.interview_id LIMIT %s OFFSET %s",
		prefixed(interviewColumns, "i."), cond, order, arg(q.Limit), arg(q.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	ptrs := make([]*model.Interview, 0, q.Limit)
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan interview row: %w", err)
		}
		ptrs = append(ptrs, i)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}
	rows.Close()

	if err := attachParticipants(ctx, r.db, ptrs); err != nil {
		return nil, 0, err
	}
	out := make([]model.Interview, len(ptrs))
	for idx, i := range ptrs {
		out[idx] = *i
	}
	return out, total, nil
}

func prefixed(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func (r *Repository) LatestForApplication(ctx context.Context, jobApplicationID uuid.UUID) (*model.Interview, error) {
	q := `SELECT ` + interviewColumns + ` FROM interviews WHERE job_application_id = $1 ORDER BY round_number DESC LIMIT 1`
	i, err := scanInterview(r.db.QueryRow(ctx, q, jobApplicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan latest interview: %w", err)
	}
	return i, nil
}

func (r *Repository) DueForReminder(ctx context.Context, from, to time.Time) ([]model.Interview, error) {
	q := `SELECT ` + interviewColumns + ` FROM interviews
WHERE status = 'scheduled' AND reminder_sent_at IS NULL AND scheduled_at >= $1 AND scheduled_at < $2
ORDER BY scheduled_at`
	rows, err := r.db.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer rows.Close()

	var ptrs []*model.Interview
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview row: %w", err)
		}
		ptrs = append(ptrs, i)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	rows.Close()

	if err := attachParticipants(ctx, r.db, ptrs); err != nil {
		return nil, err
	}
	out := make([]model.Interview, len(ptrs))
	for idx, i := range ptrs {
		out[idx] = *i
	}
	return out, nil
}

func (r *Repository) MarkReminded(ctx context.Context, interviewID uuid.UUID, at time.Time) error {
	const q = `UPDATE interviews SET reminder_sent_at = $2 WHERE interview_id = $1`
	tag, err := r.db.Exec(ctx, q, interviewID, at)
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
