package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evaluatedInterview struct {
	interview *model.Interview
	a, b      uuid.UUID
}

func (f *fixture) evaluated(t *testing.T) evaluatedInterview {
	t.Helper()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	f.dir.Put(model.UserProfile{UserID: a, Name: "Ada", Email: "ada@example.com"})
	f.dir.Put(model.UserProfile{UserID: b, Name: "Bo", Email: "bo@example.com"})

	i := f.completedInterview(t, interviewers(a, b))
	for _, u := range []uuid.UUID{a, b} {
		_, err := f.engine.Evaluations.SubmitEvaluation(ctx, actorFor(u, model.RoleInterviewer), i.InterviewID, model.SubmitEvaluationReq{
			OverallRating:      intPtr(4),
			Recommendation:     model.RecommendationHire,
			Strengths:          strPtr("strengths by " + u.String()),
			Concerns:           strPtr("concerns by " + u.String()),
			AdditionalComments: strPtr("comments by " + u.String()),
		})
		require.NoError(t, err)
	}
	return evaluatedInterview{interview: i, a: a, b: b}
}

func TestDetailRedactsOtherEvaluatorsForParticipants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.evaluated(t)

	d, err := f.engine.Reporting.GetInterviewDetail(ctx, actorFor(ev.a, model.RoleInterviewer), ev.interview.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, model.AccessParticipant, d.Access)
	require.Len(t, d.Evaluations, 2)

	for _, e := range d.Evaluations {
		if e.EvaluatorUserID == ev.a {
			assert.False(t, e.Redacted)
			require.NotNil(t, e.Strengths)
			assert.Equal(t, "strengths by "+ev.a.String(), *e.Strengths)
			continue
		}
		assert.True(t, e.Redacted)
		assert.Nil(t, e.Strengths)
		assert.Nil(t, e.Concerns)
		assert.Nil(t, e.AdditionalComments)
		assert.Equal(t, model.RecommendationHire, e.Recommendation)
		assert.Equal(t, "Bo", e.EvaluatorName)
	}

	for _, p := range d.Participants {
		assert.NotEmpty(t, p.Name)
	}
	assert.Equal(t, 4.0, d.Summary.AverageScore)
}

func TestDetailAccessByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.evaluated(t)
	id := ev.interview.InterviewID

	d, err := f.engine.Reporting.GetInterviewDetail(ctx, f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, model.AccessFull, d.Access)
	for _, e := range d.Evaluations {
		assert.False(t, e.Redacted)
		assert.NotNil(t, e.Concerns)
	}

	d, err = f.engine.Reporting.GetInterviewDetail(ctx, f.recruiter, id)
	require.NoError(t, err, "assigned recruiter")
	assert.Equal(t, model.AccessFull, d.Access)

	_, err = f.engine.Reporting.GetInterviewDetail(ctx, actorFor(uuid.New(), model.RoleRecruiter), id)
	assert.True(t, isForbidden(err), "unassigned recruiter")

	_, err = f.engine.Reporting.GetInterviewDetail(ctx, actorFor(uuid.New(), model.RoleInterviewer), id)
	assert.True(t, isForbidden(err), "outsider")

	_, err = f.engine.Reporting.GetInterviewDetail(ctx, f.admin, uuid.New())
	var nf *apperr.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestEvaluationSummaryFollowsDetailAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.evaluated(t)

	s, err := f.engine.Reporting.EvaluationSummary(ctx, actorFor(ev.b, model.RoleInterviewer), ev.interview.InterviewID)
	require.NoError(t, err)
	assert.True(t, s.IsComplete)
	require.NotNil(t, s.OverallRecommendation)
	assert.Equal(t, model.RecommendationHire, *s.OverallRecommendation)

	_, err = f.engine.Reporting.EvaluationSummary(ctx, actorFor(uuid.New(), model.RoleCandidate), ev.interview.InterviewID)
	assert.True(t, isForbidden(err))
}

func TestApplicationOutcomeAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.evaluated(t)
	_, err := f.engine.Evaluations.SetInterviewOutcome(ctx, f.admin, ev.interview.InterviewID, model.OutcomePass)
	require.NoError(t, err)
	app := ev.interview.JobApplicationID

	got, err := f.engine.Reporting.ApplicationOutcome(ctx, f.recruiter, app)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.OutcomePass, *got)

	_, err = f.engine.Reporting.ApplicationOutcome(ctx, actorFor(uuid.New(), model.RoleRecruiter), app)
	assert.True(t, isForbidden(err))

	_, err = f.engine.Reporting.ApplicationOutcome(ctx, actorFor(ev.a, model.RoleInterviewer), app)
	assert.True(t, isForbidden(err))
}

func TestSearchInterviewsScopes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	interviewer := uuid.New()

	assigned := f.mustSchedule(t, f.application(), at(10, 9, 0), 60, interviewers(uuid.New()))
	other := uuid.New()
	f.apps.Put(other, model.ApplicationShortlisted, nil)
	participating := f.mustSchedule(t, other, at(11, 9, 0), 60, interviewers(interviewer))
	unrelated := uuid.New()
	f.apps.Put(unrelated, model.ApplicationShortlisted, nil)
	f.mustSchedule(t, unrelated, at(12, 9, 0), 60, interviewers(uuid.New()))

	page, err := f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, DefaultPageSize, page.Limit)

	page, err = f.engine.Reporting.SearchInterviews(ctx, f.recruiter, model.SearchInterviewsReq{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, assigned.InterviewID, page.Items[0].InterviewID)

	page, err = f.engine.Reporting.SearchInterviews(ctx, actorFor(interviewer, model.RoleInterviewer), model.SearchInterviewsReq{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, participating.InterviewID, page.Items[0].InterviewID)

	page, err = f.engine.Reporting.SearchInterviews(ctx, actorFor(uuid.New(), model.RoleCandidate), model.SearchInterviewsReq{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Items)
}

func TestSearchInterviewsFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for day := 10; day <= 14; day++ {
		f.mustSchedule(t, f.application(), at(day, 9, 0), 60, interviewers(uuid.New()))
	}

	page, err := f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, at(12, 9, 0), page.Items[0].ScheduledAt)
	assert.True(t, page.HasNext)

	from, to := at(11, 0, 0), at(13, 0, 0)
	page, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{
		Order:  model.SortAsc,
		Filter: &model.InterviewFilter{From: &from, To: &to},
	})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, at(11, 9, 0), page.Items[0].ScheduledAt)
	assert.False(t, page.HasNext)

	page, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)

	bad := []model.Status{"archived"}
	_, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{Filter: &model.InterviewFilter{Status: &bad}})
	var verr *apperr.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{Order: "sideways"})
	assert.True(t, errors.As(err, &verr))

	_, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{
		Filter: &model.InterviewFilter{From: &to, To: &from},
	})
	assert.True(t, errors.As(err, &verr))
}

func TestSearchInterviewsOutOfRangePaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for day := 10; day <= 12; day++ {
		f.mustSchedule(t, f.application(), at(day, 9, 0), 60, interviewers(uuid.New()))
	}

	page, err := f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{Page: 0, PageSize: -5})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Offset, "page 0 reads the first page")
	assert.Equal(t, DefaultPageSize, page.Limit, "negative size falls back to the default")
	assert.Len(t, page.Items, 3)

	page, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{Page: 50, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Items, "past the last page")
	assert.False(t, page.HasNext)

	var verr *apperr.ValidationError
	_, err = f.engine.Reporting.SearchInterviews(ctx, f.admin, model.SearchInterviewsReq{Page: 1<<57 + 1, PageSize: MaxPageSize})
	require.True(t, errors.As(err, &verr), "huge page must not overflow the offset, got %v", err)
	assert.True(t, verr.Has(apperr.RuleRange))
}
