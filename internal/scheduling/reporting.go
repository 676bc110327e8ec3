package scheduling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ReportingFacade serves read models with role-based redaction applied.
type ReportingFacade struct {
	store       repository.Store
	apps        ApplicationLookup
	dir         Directory
	evaluations *EvaluationAggregator
	opts        options
}

func (r *ReportingFacade) isAssignedRecruiter(ctx context.Context, actor model.ActorContext, jobApplicationID uuid.UUID) (bool, error) {
	if !actor.IsRecruiter() {
		return false, nil
	}
	recruiter, err := r.apps.GetAssignedRecruiter(ctx, jobApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get assigned recruiter: %w", err)
	}
	return recruiter != nil && *recruiter == actor.UserID, nil
}

// accessFor decides how much of i the actor may see.
func (r *ReportingFacade) accessFor(ctx context.Context, actor model.ActorContext, i *model.Interview) (model.AccessLevel, error) {
	if actor.IsPrivilegedStaff() {
		return model.AccessFull, nil
	}
	participant := i.HasParticipant(actor.UserID)
	if actor.IsRecruiter() {
		assigned, err := r.isAssignedRecruiter(ctx, actor, i.JobApplicationID)
		if err != nil {
			return "", err
		}
		if assigned || participant {
			return model.AccessFull, nil
		}
		return "", apperr.Forbidden("view interview", "recruiter is not assigned to the application")
	}
	if participant {
		return model.AccessParticipant, nil
	}
	return "", apperr.Forbidden("view interview", "actor is not a participant")
}

// GetInterviewDetail returns the interview, its participants and its
// evaluations. Participants without full access see the comments of other
// evaluators removed; their own evaluation stays intact.
func (r *ReportingFacade) GetInterviewDetail(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID) (*model.InterviewDetail, error) {
	i, err := loadInterview(ctx, r.store, interviewID)
	if err != nil {
		return nil, err
	}
	access, err := r.accessFor(ctx, actor, i)
	if err != nil {
		return nil, err
	}

	var (
		evals    []model.Evaluation
		profiles map[uuid.UUID]model.UserProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		evals, err = r.evaluations.list(gctx, interviewID)
		return err
	})
	g.Go(func() error {
		profiles = r.profiles(gctx, i.ParticipantIDs())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &model.InterviewDetail{
		Interview:    *i,
		Access:       access,
		Participants: make([]model.ParticipantView, 0, len(i.Participants)),
		Evaluations:  make([]model.EvaluationView, 0, len(evals)),
		Summary:      summarize(i, evals),
		ViewerID:     actor.UserID,
	}
	for _, p := range i.Participants {
		v := model.ParticipantView{Participant: p}
		if prof, ok := profiles[p.UserID]; ok {
			v.Name, v.Email = prof.Name, prof.Email
		}
		detail.Participants = append(detail.Participants, v)
	}
	for _, e := range evals {
		v := model.EvaluationView{Evaluation: e, EvaluatorName: profiles[e.EvaluatorUserID].Name}
		if access != model.AccessFull && e.EvaluatorUserID != actor.UserID {
			v.Strengths, v.Concerns, v.AdditionalComments = nil, nil, nil
			v.Redacted = true
		}
		detail.Evaluations = append(detail.Evaluations, v)
	}
	return detail, nil
}

// profiles is best-effort: a directory failure leaves names empty.
func (r *ReportingFacade) profiles(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]model.UserProfile {
	if r.dir == nil || len(ids) == 0 {
		return nil
	}
	out, err := r.dir.GetProfiles(ctx, ids)
	if err != nil {
		r.opts.logger.Warn("resolve participant names failed", zap.Int("count", len(ids)), zap.Error(err))
		return nil
	}
	return out
}

// EvaluationSummary is visible to anyone who may view the interview.
func (r *ReportingFacade) EvaluationSummary(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID) (*model.EvaluationSummary, error) {
	i, err := loadInterview(ctx, r.store, interviewID)
	if err != nil {
		return nil, err
	}
	if _, err := r.accessFor(ctx, actor, i); err != nil {
		return nil, err
	}
	evals, err := r.evaluations.list(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	s := summarize(i, evals)
	return &s, nil
}

// ApplicationOutcome is restricted to privileged staff and the assigned
// recruiter.
func (r *ReportingFacade) ApplicationOutcome(ctx context.Context, actor model.ActorContext, jobApplicationID uuid.UUID) (*model.Outcome, error) {
	if !actor.IsPrivilegedStaff() {
		if !actor.IsRecruiter() {
			return nil, apperr.Forbidden("view application outcome", "requires privileged staff or the assigned recruiter")
		}
		recruiter, err := r.apps.GetAssignedRecruiter(ctx, jobApplicationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.NotFound("job application", jobApplicationID)
			}
			return nil, fmt.Errorf("get assigned recruiter: %w", err)
		}
		if recruiter == nil || *recruiter != actor.UserID {
			return nil, apperr.Forbidden("view application outcome", "recruiter is not assigned to the application")
		}
	}
	return r.evaluations.OverallOutcomeForApplication(ctx, jobApplicationID)
}

func validateFilter(f model.InterviewFilter) error {
	verr := &apperr.ValidationError{}
	if f.Status != nil {
		for _, s := range *f.Status {
			if !s.IsValid() {
				verr.Add(apperr.RuleInput, "unknown status %q", s)
			}
		}
	}
	if f.Type != nil {
		for _, t := range *f.Type {
			if !t.IsValid() {
				verr.Add(apperr.RuleInput, "unknown interview type %q", t)
			}
		}
	}
	if f.Mode != nil {
		for _, m := range *f.Mode {
			if !m.IsValid() {
				verr.Add(apperr.RuleInput, "unknown interview mode %q", m)
			}
		}
	}
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		verr.Add(apperr.RuleRange, "to %s is not after from %s", f.To.Format(time.RFC3339), f.From.Format(time.RFC3339))
	}
	return verr.OrNil()
}

// SearchInterviews pages through interviews visible to the actor. Privileged
// staff see everything; recruiters see their assigned applications and
// interviews they take part in; anyone else only the latter.
func (r *ReportingFacade) SearchInterviews(ctx context.Context, actor model.ActorContext, req model.SearchInterviewsReq) (*model.InterviewPage, error) {
	var filter model.InterviewFilter
	if req.Filter != nil {
		filter = *req.Filter
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	order := req.Order
	switch order {
	case "":
		order = model.SortDesc
	case model.SortAsc, model.SortDesc:
	default:
		return nil, apperr.Invalid(apperr.RuleInput, "unknown order %q", order)
	}

	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)
	if page > math.MaxInt32/size {
		return nil, apperr.Invalid(apperr.RuleRange, "page %d is out of range", page)
	}

	q := model.InterviewQuery{
		Filter: filter,
		Order:  order,
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if !actor.IsPrivilegedStaff() {
		q.Scoped = true
		q.ScopeParticipantID = actor.UserID
		if actor.IsRecruiter() {
			apps, err := r.apps.ListAssignedApplications(ctx, actor.UserID)
			if err != nil {
				return nil, fmt.Errorf("list assigned applications: %w", err)
			}
			q.ScopeApplicationIDs = apps
		}
	}

	items, total, err := r.store.SearchInterviews(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search interviews: %w", err)
	}
	if items == nil {
		items = []model.Interview{}
	}
	return &model.InterviewPage{
		Items:   items,
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
		HasNext: q.Offset+len(items) < total,
	}, nil
}
