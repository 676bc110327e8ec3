package model

import "github.com/google/uuid"

// AccessLevel describes how much of an interview the viewer may see.
type AccessLevel string

const (
	AccessFull        AccessLevel = "full"
	AccessParticipant AccessLevel = "participant"
)

type ParticipantView struct {
	Participant
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type EvaluationView struct {
	Evaluation
	EvaluatorName string `json:"evaluator_name,omitempty"`
	Redacted      bool   `json:"redacted"`
}

type InterviewDetail struct {
	Interview    Interview         `json:"interview"`
	Access       AccessLevel       `json:"access"`
	Participants []ParticipantView `json:"participants"`
	Evaluations  []EvaluationView  `json:"evaluations"`
	Summary      EvaluationSummary `json:"summary"`
	ViewerID     uuid.UUID         `json:"viewer_id"`
}
