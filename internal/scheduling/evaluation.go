package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const opSubmitEvaluation = "submit_evaluation"

type EvaluationAggregator struct {
	store repository.Store
	opts  options
}

// canEvaluate is true for participants with an evaluator role or the lead
// flag. Observers and candidates never evaluate.
func canEvaluate(i *model.Interview, userID uuid.UUID) bool {
	p, ok := i.Participant(userID)
	return ok && p.IsEvaluator()
}

func (e *EvaluationAggregator) CanEvaluate(ctx context.Context, interviewID, userID uuid.UUID) (bool, error) {
	i, err := loadInterview(ctx, e.store, interviewID)
	if err != nil {
		return false, err
	}
	return canEvaluate(i, userID), nil
}

func validateEvaluation(req model.SubmitEvaluationReq) error {
	verr := &apperr.ValidationError{}
	if req.OverallRating != nil && (*req.OverallRating < model.MinRating || *req.OverallRating > model.MaxRating) {
		verr.Add(apperr.RuleInput, "overall rating %d is outside %d-%d", *req.OverallRating, model.MinRating, model.MaxRating)
	}
	if !req.Recommendation.IsValid() {
		verr.Add(apperr.RuleInput, "unknown recommendation %q", req.Recommendation)
	}
	return verr.OrNil()
}

// SubmitEvaluation records the actor's evaluation of a completed interview.
// Submitting again replaces the previous values.
func (e *EvaluationAggregator) SubmitEvaluation(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID, req model.SubmitEvaluationReq) (*model.Evaluation, error) {
	i, err := loadInterview(ctx, e.store, interviewID)
	if err != nil {
		return nil, err
	}
	if !canEvaluate(i, actor.UserID) {
		return nil, apperr.Forbidden("submit evaluation", "actor is not an evaluator of this interview")
	}
	if i.Status != model.StatusCompleted {
		return nil, &apperr.StateError{InterviewID: interviewID, Current: i.Status, Operation: opSubmitEvaluation}
	}
	if err := validateEvaluation(req); err != nil {
		return nil, err
	}

	saved, err := e.store.UpsertEvaluation(ctx, &model.Evaluation{
		EvaluationID:       uuid.New(),
		InterviewID:        interviewID,
		EvaluatorUserID:    actor.UserID,
		OverallRating:      req.OverallRating,
		Recommendation:     req.Recommendation,
		Strengths:          req.Strengths,
		Concerns:           req.Concerns,
		AdditionalComments: req.AdditionalComments,
		UpdatedAt:          e.opts.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("save evaluation: %w", err)
	}
	e.opts.metrics.EvaluationSubmitted()
	e.opts.logger.Info("evaluation submitted",
		zap.String("interview_id", interviewID.String()),
		zap.String("evaluator_id", actor.UserID.String()),
		zap.String("recommendation", string(req.Recommendation)),
	)
	return saved, nil
}

// AverageScore is the mean of the non-null ratings, and 0 when nothing has
// been rated.
func (e *EvaluationAggregator) AverageScore(ctx context.Context, interviewID uuid.UUID) (float64, error) {
	evals, err := e.list(ctx, interviewID)
	if err != nil {
		return 0, err
	}
	avg, _ := averageScore(evals)
	return avg, nil
}

func (e *EvaluationAggregator) IsEvaluationComplete(ctx context.Context, interviewID uuid.UUID) (bool, error) {
	i, err := loadInterview(ctx, e.store, interviewID)
	if err != nil {
		return false, err
	}
	evals, err := e.list(ctx, interviewID)
	if err != nil {
		return false, err
	}
	return isEvaluationComplete(i, evals), nil
}

// OverallRecommendation returns the most frequent recommendation, nil when
// there are no evaluations. Ties go to the more cautious value.
func (e *EvaluationAggregator) OverallRecommendation(ctx context.Context, interviewID uuid.UUID) (*model.Recommendation, error) {
	evals, err := e.list(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	return overallRecommendation(evals), nil
}

// SetInterviewOutcome records the staff decision for a completed interview.
// It does not wait for every evaluation; staff may decide early.
func (e *EvaluationAggregator) SetInterviewOutcome(ctx context.Context, actor model.ActorContext, interviewID uuid.UUID, outcome model.Outcome) (*model.Interview, error) {
	if !actor.IsPrivilegedStaff() {
		return nil, apperr.Forbidden("set interview outcome", "requires privileged staff")
	}
	if !outcome.IsValid() {
		return nil, apperr.Invalid(apperr.RuleInput, "unknown outcome %q", outcome)
	}
	i, err := loadInterview(ctx, e.store, interviewID)
	if err != nil {
		return nil, err
	}
	if _, ok := nextStatus(i.Status, OpSetOutcome); !ok {
		return nil, &apperr.StateError{InterviewID: interviewID, Current: i.Status, Operation: string(OpSetOutcome)}
	}

	updated, err := e.store.SetOutcome(ctx, interviewID, repository.OutcomeChange{
		Outcome: outcome,
		SetBy:   actor.UserID,
		At:      e.opts.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, staleState(ctx, e.store, interviewID, OpSetOutcome)
		}
		return nil, fmt.Errorf("set outcome: %w", err)
	}
	e.opts.metrics.Transition(string(OpSetOutcome))
	return updated, nil
}

// OverallOutcomeForApplication is the outcome of the highest round, nil when
// the application has no interview or that round has no outcome yet.
func (e *EvaluationAggregator) OverallOutcomeForApplication(ctx context.Context, jobApplicationID uuid.UUID) (*model.Outcome, error) {
	latest, err := e.store.LatestForApplication(ctx, jobApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest interview: %w", err)
	}
	return latest.Outcome, nil
}

// Summary computes every aggregate in one pass over the evaluations.
func (e *EvaluationAggregator) Summary(ctx context.Context, interviewID uuid.UUID) (*model.EvaluationSummary, error) {
	i, err := loadInterview(ctx, e.store, interviewID)
	if err != nil {
		return nil, err
	}
	evals, err := e.list(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	s := summarize(i, evals)
	return &s, nil
}

func (e *EvaluationAggregator) list(ctx context.Context, interviewID uuid.UUID) ([]model.Evaluation, error) {
	evals, err := e.store.ListEvaluations(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}

func summarize(i *model.Interview, evals []model.Evaluation) model.EvaluationSummary {
	avg, rated := averageScore(evals)
	return model.EvaluationSummary{
		InterviewID:           i.InterviewID,
		AverageScore:          avg,
		RatedCount:            rated,
		SubmittedCount:        len(evals),
		RequiredCount:         len(i.Evaluators()),
		IsComplete:            isEvaluationComplete(i, evals),
		OverallRecommendation: overallRecommendation(evals),
		Outcome:               i.Outcome,
	}
}

func averageScore(evals []model.Evaluation) (float64, int) {
	sum, n := 0, 0
	for _, e := range evals {
		if e.OverallRating != nil {
			sum += *e.OverallRating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

func isEvaluationComplete(i *model.Interview, evals []model.Evaluation) bool {
	count := make(map[uuid.UUID]int, len(evals))
	for _, e := range evals {
		count[e.EvaluatorUserID]++
	}
	for _, p := range i.Evaluators() {
		if count[p.UserID] != 1 {
			return false
		}
	}
	return true
}

func overallRecommendation(evals []model.Evaluation) *model.Recommendation {
	votes := make(map[model.Recommendation]int)
	for _, e := range evals {
		if e.Recommendation.IsValid() {
			votes[e.Recommendation]++
		}
	}
	var best model.Recommendation
	for r, n := range votes {
		if best == "" || n > votes[best] || (n == votes[best] && r.Caution() > best.Caution()) {
			best = r
		}
	}
	if best == "" {
		return nil
	}
	return &best
}
