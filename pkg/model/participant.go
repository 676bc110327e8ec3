package model

import "github.com/google/uuid"

type ParticipantRole string

const (
	ParticipantInterviewer ParticipantRole = "interviewer"
	ParticipantLead        ParticipantRole = "lead"
	ParticipantObserver    ParticipantRole = "observer"
	ParticipantCandidate   ParticipantRole = "candidate"
)

func (r ParticipantRole) IsValid() bool {
	switch r {
	case ParticipantInterviewer, ParticipantLead, ParticipantObserver, ParticipantCandidate:
		return true
	default:
		return false
	}
}

type Participant struct {
	UserID uuid.UUID       `json:"user_id" db:"user_id"`
	Role   ParticipantRole `json:"role" db:"role"`
	IsLead bool            `json:"is_lead" db:"is_lead"`
}

// IsEvaluator reports whether the participant is a required evaluator.
func (p Participant) IsEvaluator() bool {
	return p.Role == ParticipantInterviewer || p.Role == ParticipantLead || p.IsLead
}
