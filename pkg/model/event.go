package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventScheduled   EventType = "interview.scheduled"
	EventRescheduled EventType = "interview.rescheduled"
	EventCancelled   EventType = "interview.cancelled"
	EventCompleted   EventType = "interview.completed"
	EventNoShow      EventType = "interview.no_show"
	EventReminder    EventType = "interview.reminder"
)

// InterviewEvent is what the notifier publishes after a lifecycle change.
type InterviewEvent struct {
	Type             EventType   `json:"type"`
	InterviewID      uuid.UUID   `json:"interview_id"`
	JobApplicationID uuid.UUID   `json:"job_application_id"`
	RoundNumber      int         `json:"round_number"`
	ScheduledAt      time.Time   `json:"scheduled_at"`
	DurationMinutes  int         `json:"duration_minutes"`
	Status           Status      `json:"status"`
	ParticipantIDs   []uuid.UUID `json:"participant_ids"`
	ActorID          *uuid.UUID  `json:"actor_id,omitempty"`
	OccurredAt       time.Time   `json:"occurred_at"`
}

// NewInterviewEvent snapshots i for publishing. actor is nil for system events.
func NewInterviewEvent(t EventType, i *Interview, actor *uuid.UUID, at time.Time) InterviewEvent {
	return InterviewEvent{
		Type:             t,
		InterviewID:      i.InterviewID,
		JobApplicationID: i.JobApplicationID,
		RoundNumber:      i.RoundNumber,
		ScheduledAt:      i.ScheduledAt,
		DurationMinutes:  i.DurationMinutes,
		Status:           i.Status,
		ParticipantIDs:   i.ParticipantIDs(),
		ActorID:          actor,
		OccurredAt:       at,
	}
}
