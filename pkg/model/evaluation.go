package model

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation string

const (
	RecommendationStrongHire   Recommendation = "strong_hire"
	RecommendationHire         Recommendation = "hire"
	RecommendationNoDecision   Recommendation = "no_decision"
	RecommendationNoHire       Recommendation = "no_hire"
	RecommendationStrongNoHire Recommendation = "strong_no_hire"
)

func (r Recommendation) IsValid() bool {
	return r.Caution() > 0
}

// Caution ranks recommendations from most favourable (1) to most cautious (5).
// Unknown values rank 0.
func (r Recommendation) Caution() int {
	switch r {
	case RecommendationStrongHire:
		return 1
	case RecommendationHire:
		return 2
	case RecommendationNoDecision:
		return 3
	case RecommendationNoHire:
		return 4
	case RecommendationStrongNoHire:
		return 5
	default:
		return 0
	}
}

const (
	MinRating = 1
	MaxRating = 5
)

type Evaluation struct {
	EvaluationID       uuid.UUID      `json:"evaluation_id" db:"evaluation_id"`
	InterviewID        uuid.UUID      `json:"interview_id" db:"interview_id"`
	EvaluatorUserID    uuid.UUID      `json:"evaluator_user_id" db:"evaluator_user_id"`
	OverallRating      *int           `json:"overall_rating" db:"overall_rating"`
	Recommendation     Recommendation `json:"recommendation" db:"recommendation"`
	Strengths          *string        `json:"strengths" db:"strengths"`
	Concerns           *string        `json:"concerns" db:"concerns"`
	AdditionalComments *string        `json:"additional_comments" db:"additional_comments"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

type SubmitEvaluationReq struct {
	OverallRating      *int           `json:"overall_rating"`
	Recommendation     Recommendation `json:"recommendation" binding:"required"`
	Strengths          *string        `json:"strengths"`
	Concerns           *string        `json:"concerns"`
	AdditionalComments *string        `json:"additional_comments"`
}

type EvaluationSummary struct {
	InterviewID           uuid.UUID       `json:"interview_id"`
	AverageScore          float64         `json:"average_score"`
	RatedCount            int             `json:"rated_count"`
	SubmittedCount        int             `json:"submitted_count"`
	RequiredCount         int             `json:"required_count"`
	IsComplete            bool            `json:"is_complete"`
	OverallRecommendation *Recommendation `json:"overall_recommendation"`
	Outcome               *Outcome        `json:"outcome"`
}
