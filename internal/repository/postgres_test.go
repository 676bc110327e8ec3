package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/abhishek622/interviewflow/internal/config"
	"github.com/abhishek622/interviewflow/internal/database"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgres(t *testing.T) *repository.Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.Connect(ctx, config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 5, MaxIdleTime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool))
	return repository.NewRepository(pool)
}

func TestPostgresScheduleLifecycle(t *testing.T) {
	repo := newPostgres(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Minute)
	interviewer := uuid.New()
	i := &model.Interview{
		InterviewID:      uuid.New(),
		JobApplicationID: uuid.New(),
		RoundNumber:      1,
		ScheduledAt:      start,
		DurationMinutes:  60,
		Status:           model.StatusScheduled,
		Type:             model.TypeScreening,
		Mode:             model.ModePhone,
		ScheduledBy:      uuid.New(),
		CreatedAt:        time.Now().UTC(),
		Participants:     []model.Participant{{UserID: interviewer, Role: model.ParticipantLead, IsLead: true}},
	}

	keys := []string{repository.LockKeyApplication(i.JobApplicationID), repository.LockKeyParticipant(interviewer)}
	err := repo.InSchedulingTx(ctx, keys, func(tx repository.SchedulingTx) error {
		return tx.InsertInterview(ctx, i)
	})
	require.NoError(t, err)

	busy, err := repo.BusyWindows(ctx, []uuid.UUID{interviewer}, start.Add(59*time.Minute), start.Add(2*time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.True(t, busy[0].End.Equal(start.Add(time.Hour)))

	busy, err = repo.BusyWindows(ctx, []uuid.UUID{interviewer}, start.Add(time.Hour), start.Add(2*time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, busy)

	dup := *i
	dup.InterviewID = uuid.New()
	dup.Participants = nil
	err = repo.InSchedulingTx(ctx, keys, func(tx repository.SchedulingTx) error {
		return tx.InsertInterview(ctx, &dup)
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.TransitionStatus(ctx, i.InterviewID, model.StatusScheduled, repository.StatusChange{To: model.StatusCompleted, At: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.Len(t, got.Participants, 1)

	_, err = repo.TransitionStatus(ctx, i.InterviewID, model.StatusScheduled, repository.StatusChange{To: model.StatusCancelled, At: time.Now().UTC()})
	assert.ErrorIs(t, err, repository.ErrStatusChanged)

	rating := 4
	e := &model.Evaluation{
		EvaluationID: uuid.New(), InterviewID: i.InterviewID, EvaluatorUserID: interviewer,
		OverallRating: &rating, Recommendation: model.RecommendationHire, UpdatedAt: time.Now().UTC(),
	}
	first, err := repo.UpsertEvaluation(ctx, e)
	require.NoError(t, err)
	e.EvaluationID = uuid.New()
	e.Recommendation = model.RecommendationStrongHire
	second, err := repo.UpsertEvaluation(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, first.EvaluationID, second.EvaluationID)
	assert.Equal(t, model.RecommendationStrongHire, second.Recommendation)
}
