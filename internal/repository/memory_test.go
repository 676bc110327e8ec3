package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, m *Memory, app uuid.UUID, round int, start time.Time, users ...uuid.UUID) *model.Interview {
	t.Helper()
	i := &model.Interview{
		InterviewID:      uuid.New(),
		JobApplicationID: app,
		RoundNumber:      round,
		ScheduledAt:      start,
		DurationMinutes:  60,
		Status:           model.StatusScheduled,
		Type:             model.TypeTechnical,
		Mode:             model.ModeVideo,
		CreatedAt:        base,
		UpdatedAt:        base,
	}
	for _, u := range users {
		i.Participants = append(i.Participants, model.Participant{UserID: u, Role: model.ParticipantInterviewer})
	}
	err := m.InSchedulingTx(context.Background(), nil, func(tx SchedulingTx) error {
		return tx.InsertInterview(context.Background(), i)
	})
	require.NoError(t, err)
	return i
}

func TestMemoryBusyWindowsHalfOpen(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	alice, bob := uuid.New(), uuid.New()
	i := seed(t, m, uuid.New(), 1, base, alice, bob)

	got, err := m.BusyWindows(ctx, []uuid.UUID{alice}, base.Add(30*time.Minute), base.Add(90*time.Minute), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, i.InterviewID, got[0].InterviewID)
	assert.Equal(t, base.Add(time.Hour), got[0].End)

	got, err = m.BusyWindows(ctx, []uuid.UUID{alice}, base.Add(time.Hour), base.Add(2*time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got, "abutting window must not be busy")

	got, err = m.BusyWindows(ctx, []uuid.UUID{alice, bob}, base, base.Add(time.Hour), &i.InterviewID)
	require.NoError(t, err)
	assert.Empty(t, got, "excluded interview")
}

func TestMemoryInsertRejectsDuplicateRound(t *testing.T) {
	m := NewMemory()
	app := uuid.New()
	seed(t, m, app, 1, base, uuid.New())

	dup := &model.Interview{InterviewID: uuid.New(), JobApplicationID: app, RoundNumber: 1, Status: model.StatusScheduled}
	err := m.InSchedulingTx(context.Background(), nil, func(tx SchedulingTx) error {
		return tx.InsertInterview(context.Background(), dup)
	})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestMemoryTransitionIsGuarded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	i := seed(t, m, uuid.New(), 1, base, uuid.New())

	got, err := m.TransitionStatus(ctx, i.InterviewID, model.StatusScheduled, StatusChange{To: model.StatusCompleted, At: base})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	_, err = m.TransitionStatus(ctx, i.InterviewID, model.StatusScheduled, StatusChange{To: model.StatusCancelled, At: base})
	assert.ErrorIs(t, err, ErrStatusChanged)

	_, err = m.TransitionStatus(ctx, uuid.New(), model.StatusScheduled, StatusChange{To: model.StatusCancelled, At: base})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpsertEvaluationKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	evaluator := uuid.New()
	i := seed(t, m, uuid.New(), 1, base, evaluator)

	rating := 3
	first, err := m.UpsertEvaluation(ctx, &model.Evaluation{
		EvaluationID: uuid.New(), InterviewID: i.InterviewID, EvaluatorUserID: evaluator,
		OverallRating: &rating, Recommendation: model.RecommendationHire, UpdatedAt: base,
	})
	require.NoError(t, err)

	rating2 := 5
	second, err := m.UpsertEvaluation(ctx, &model.Evaluation{
		EvaluationID: uuid.New(), InterviewID: i.InterviewID, EvaluatorUserID: evaluator,
		OverallRating: &rating2, Recommendation: model.RecommendationStrongHire, UpdatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, first.EvaluationID, second.EvaluationID)
	assert.Equal(t, base, second.CreatedAt)

	all, err := m.ListEvaluations(ctx, i.InterviewID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 5, *all[0].OverallRating)
}

func TestMemorySearchScopeAndPaging(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	viewer := uuid.New()
	assigned := uuid.New()
	seed(t, m, assigned, 1, base, uuid.New())
	seed(t, m, uuid.New(), 1, base.Add(24*time.Hour), viewer)
	seed(t, m, uuid.New(), 1, base.Add(48*time.Hour), uuid.New())

	items, total, err := m.SearchInterviews(ctx, model.InterviewQuery{
		Scoped: true, ScopeApplicationIDs: []uuid.UUID{assigned}, ScopeParticipantID: viewer, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.True(t, items[0].ScheduledAt.After(items[1].ScheduledAt), "default order is newest first")

	items, total, err = m.SearchInterviews(ctx, model.InterviewQuery{Order: model.SortAsc, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, base.Add(24*time.Hour), items[0].ScheduledAt)
}

func TestMemoryReminderWindow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	soon := seed(t, m, uuid.New(), 1, base, uuid.New())
	seed(t, m, uuid.New(), 1, base.Add(72*time.Hour), uuid.New())

	due, err := m.DueForReminder(ctx, base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.InterviewID, due[0].InterviewID)

	require.NoError(t, m.MarkReminded(ctx, soon.InterviewID, base))
	due, err = m.DueForReminder(ctx, base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSortedUniqueLockKeys(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	got := sortedUnique([]string{LockKeyParticipant(a), LockKeyApplication(a), LockKeyParticipant(b), LockKeyParticipant(a)})
	assert.Equal(t, []string{
		LockKeyApplication(a),
		LockKeyParticipant(b),
		LockKeyParticipant(a),
	}, got)
}

func TestMemorySearchToleratesOutOfRangeOffset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seed(t, m, uuid.New(), 1, base, uuid.New())

	for _, q := range []model.InterviewQuery{
		{Limit: 10, Offset: -40},
		{Limit: 10, Offset: 1 << 40},
		{Limit: -1, Offset: 0},
	} {
		items, total, err := m.SearchInterviews(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.LessOrEqual(t, len(items), 1)
	}
}
