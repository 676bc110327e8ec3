package repository

import (
	"context"
	"fmt"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
)

const evaluationColumns = `
	evaluation_id, interview_id, evaluator_user_id, overall_rating, recommendation,
	strengths, concerns, additional_comments, created_at, updated_at`

// UpsertEvaluation stores one evaluation per (interview, evaluator). A second
// submission replaces the content and keeps the original id and created_at.
func (r *Repository) UpsertEvaluation(ctx context.Context, e *model.Evaluation) (*model.Evaluation, error) {
	q := `
INSERT INTO evaluations (
	evaluation_id, interview_id, evaluator_user_id, overall_rating, recommendation,
	strengths, concerns, additional_comments, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (interview_id, evaluator_user_id) DO UPDATE SET
	overall_rating = EXCLUDED.overall_rating,
	recommendation = EXCLUDED.recommendation,
	strengths = EXCLUDED.strengths,
	concerns = EXCLUDED.concerns,
	additional_comments = EXCLUDED.additional_comments,
	updated_at = EXCLUDED.updated_at
RETURNING ` + evaluationColumns

	var out model.Evaluation
	err := r.db.QueryRow(ctx, q,
		e.EvaluationID, e.InterviewID, e.EvaluatorUserID, e.OverallRating, string(e.Recommendation),
		e.Strengths, e.Concerns, e.AdditionalComments, e.UpdatedAt,
	).Scan(
		&out.EvaluationID, &out.InterviewID, &out.EvaluatorUserID, &out.OverallRating, &out.Recommendation,
		&out.Strengths, &out.Concerns, &out.AdditionalComments, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert evaluation: %w", err)
	}
	return &out, nil
}

func (r *Repository) ListEvaluations(ctx context.Context, interviewID uuid.UUID) ([]model.Evaluation, error) {
	q := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE interview_id = $1 ORDER BY created_at, evaluator_user_id`
	rows, err := r.db.Query(ctx, q, interviewID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []model.Evaluation
	for rows.Next() {
		var e model.Evaluation
		if err := rows.Scan(
			&e.EvaluationID, &e.InterviewID, &e.EvaluatorUserID, &e.OverallRating, &e.Recommendation,
			&e.Strengths, &e.Concerns, &e.AdditionalComments, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}
