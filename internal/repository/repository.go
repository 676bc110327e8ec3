package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStatusChanged = errors.New("interview status changed concurrently")
	ErrDuplicate     = errors.New("duplicate record")
)

// Store is the persistence surface of the scheduling core. Both the Postgres
// Repository and the in-memory Memory store implement it.
type Store interface {
	GetInterview(ctx context.Context, interviewID uuid.UUID) (*model.Interview, error)
	BusyWindows(ctx context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error)
	TransitionStatus(ctx context.Context, interviewID uuid.UUID, from model.Status, change StatusChange) (*model.Interview, error)
	SetOutcome(ctx context.Context, interviewID uuid.UUID, change OutcomeChange) (*model.Interview, error)
	UpdateNotes(ctx context.Context, interviewID uuid.UUID, change NotesChange) (*model.Interview, error)
	SearchInterviews(ctx context.Context, q model.InterviewQuery) ([]model.Interview, int, error)
	LatestForApplication(ctx context.Context, jobApplicationID uuid.UUID) (*model.Interview, error)
	DueForReminder(ctx context.Context, from, to time.Time) ([]model.Interview, error)
	MarkReminded(ctx context.Context, interviewID uuid.UUID, at time.Time) error
	ListEvaluations(ctx context.Context, interviewID uuid.UUID) ([]model.Evaluation, error)
	UpsertEvaluation(ctx context.Context, e *model.Evaluation) (*model.Evaluation, error)

	// InSchedulingTx runs fn atomically while holding an exclusive lock on
	// every key. Conflict checks and the write that depends on them belong in
	// the same fn.
	InSchedulingTx(ctx context.Context, lockKeys []string, fn func(tx SchedulingTx) error) error
}

// SchedulingTx is the view of the store inside InSchedulingTx.
type SchedulingTx interface {
	GetInterview(ctx context.Context, interviewID uuid.UUID) (*model.Interview, error)
	BusyWindows(ctx context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error)
	HasScheduledForApplication(ctx context.Context, jobApplicationID uuid.UUID) (bool, error)
	MaxRoundNumber(ctx context.Context, jobApplicationID uuid.UUID) (int, error)
	InsertInterview(ctx context.Context, interview *model.Interview) error
	// Reschedule moves a scheduled interview and appends rec to its audit
	// trail. It fails with ErrStatusChanged if the interview left scheduled.
	Reschedule(ctx context.Context, interviewID uuid.UUID, rec model.RescheduleRecord) error
}

// StatusChange lists the only fields a status transition may touch.
type StatusChange struct {
	To                 model.Status
	At                 time.Time
	CancellationReason *string
}

type OutcomeChange struct {
	Outcome model.Outcome
	SetBy   uuid.UUID
	At      time.Time
}

// NotesChange updates the non-nil text fields while the interview is still in
// ExpectStatus.
type NotesChange struct {
	ExpectStatus   model.Status
	SummaryNotes   *string
	MeetingDetails *string
	Instructions   *string
	At             time.Time
}

func LockKeyParticipant(id uuid.UUID) string { return "participant:" + id.String() }
func LockKeyApplication(id uuid.UUID) string { return "application:" + id.String() }

func sortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the Postgres implementation of Store.
type Repository struct {
	db           *pgxpool.Pool
	Users        UserRepository
	Applications JobApplicationRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:           db,
		Users:        UserRepository{db: db},
		Applications: JobApplicationRepository{db: db},
	}
}

func (r *Repository) execTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// PostgreSQL unique_violation code is "23505"
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
