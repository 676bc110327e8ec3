package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further status transition can leave s.
// Completed is terminal for attendance; its outcome stays mutable.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

type InterviewType string

const (
	TypeScreening    InterviewType = "screening"
	TypeTechnical    InterviewType = "technical"
	TypeBehavioral   InterviewType = "behavioral"
	TypeSystemDesign InterviewType = "system_design"
	TypeHR           InterviewType = "hr"
	TypeFinal        InterviewType = "final"
)

func (t InterviewType) IsValid() bool {
	switch t {
	case TypeScreening, TypeTechnical, TypeBehavioral, TypeSystemDesign, TypeHR, TypeFinal:
		return true
	default:
		return false
	}
}

type Mode string

const (
	ModeOnSite Mode = "on_site"
	ModeVideo  Mode = "video"
	ModePhone  Mode = "phone"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeOnSite, ModeVideo, ModePhone:
		return true
	default:
		return false
	}
}

type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomePending Outcome = "pending"
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomePending:
		return true
	default:
		return false
	}
}

type Interview struct {
	InterviewID        uuid.UUID          `json:"interview_id" db:"interview_id"`
	JobApplicationID   uuid.UUID          `json:"job_application_id" db:"job_application_id"`
	RoundNumber        int                `json:"round_number" db:"round_number"`
	ScheduledAt        time.Time          `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes    int                `json:"duration_minutes" db:"duration_minutes"`
	Status             Status             `json:"status" db:"status"`
	Type               InterviewType      `json:"type" db:"type"`
	Mode               Mode               `json:"mode" db:"mode"`
	Outcome            *Outcome           `json:"outcome" db:"outcome"`
	SummaryNotes       *string            `json:"summary_notes" db:"summary_notes"`
	MeetingDetails     *string            `json:"meeting_details" db:"meeting_details"`
	Instructions       *string            `json:"instructions" db:"instructions"`
	CancellationReason *string            `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	ScheduledBy        uuid.UUID          `json:"scheduled_by" db:"scheduled_by"`
	OutcomeSetBy       *uuid.UUID         `json:"outcome_set_by,omitempty" db:"outcome_set_by"`
	OutcomeSetAt       *time.Time         `json:"outcome_set_at,omitempty" db:"outcome_set_at"`
	CompletedAt        *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
	ReminderSentAt     *time.Time         `json:"reminder_sent_at,omitempty" db:"reminder_sent_at"`
	Participants       []Participant      `json:"participants"`
	Reschedules        []RescheduleRecord `json:"reschedules,omitempty"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// EndsAt is the exclusive end of the interview window.
func (i *Interview) EndsAt() time.Time {
	return i.ScheduledAt.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

func (i *Interview) Participant(userID uuid.UUID) (Participant, bool) {
	for _, p := range i.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

func (i *Interview) HasParticipant(userID uuid.UUID) bool {
	_, ok := i.Participant(userID)
	return ok
}

func (i *Interview) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(i.Participants))
	for _, p := range i.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// Evaluators returns the participants expected to submit an evaluation.
func (i *Interview) Evaluators() []Participant {
	out := make([]Participant, 0, len(i.Participants))
	for _, p := range i.Participants {
		if p.IsEvaluator() {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy so stores can hand out values without aliasing.
func (i *Interview) Clone() *Interview {
	c := *i
	c.Participants = append([]Participant(nil), i.Participants...)
	c.Reschedules = append([]RescheduleRecord(nil), i.Reschedules...)
	c.Outcome = clonePtr(i.Outcome)
	c.SummaryNotes = clonePtr(i.SummaryNotes)
	c.MeetingDetails = clonePtr(i.MeetingDetails)
	c.Instructions = clonePtr(i.Instructions)
	c.CancellationReason = clonePtr(i.CancellationReason)
	c.OutcomeSetBy = clonePtr(i.OutcomeSetBy)
	c.OutcomeSetAt = clonePtr(i.OutcomeSetAt)
	c.CompletedAt = clonePtr(i.CompletedAt)
	c.ReminderSentAt = clonePtr(i.ReminderSentAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// RescheduleRecord is the audit entry written for every reschedule.
type RescheduleRecord struct {
	PreviousScheduledAt     time.Time `json:"previous_scheduled_at" db:"previous_scheduled_at"`
	PreviousDurationMinutes int       `json:"previous_duration_minutes" db:"previous_duration_minutes"`
	NewScheduledAt          time.Time `json:"new_scheduled_at" db:"new_scheduled_at"`
	NewDurationMinutes      int       `json:"new_duration_minutes" db:"new_duration_minutes"`
	RescheduledBy           uuid.UUID `json:"rescheduled_by" db:"rescheduled_by"`
	RescheduledAt           time.Time `json:"rescheduled_at" db:"rescheduled_at"`
	Reason                  *string   `json:"reason,omitempty" db:"reason"`
}

// BusyWindow is one participant's occupied slot in a scheduled interview.
type BusyWindow struct {
	InterviewID uuid.UUID `json:"interview_id"`
	UserID      uuid.UUID `json:"user_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type ParticipantReq struct {
	UserID uuid.UUID       `json:"user_id" binding:"required"`
	Role   ParticipantRole `json:"role" binding:"required"`
	IsLead bool            `json:"is_lead"`
}

type ScheduleInterviewReq struct {
	JobApplicationID uuid.UUID        `json:"job_application_id" binding:"required"`
	ScheduledAt      time.Time        `json:"scheduled_at" binding:"required"`
	DurationMinutes  int              `json:"duration_minutes" binding:"required"`
	Type             InterviewType    `json:"type" binding:"required"`
	Mode             Mode             `json:"mode" binding:"required"`
	Participants     []ParticipantReq `json:"participants" binding:"required,min=1,dive"`
	MeetingDetails   *string          `json:"meeting_details"`
	Instructions     *string          `json:"instructions"`
}

type RescheduleInterviewReq struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes *int      `json:"duration_minutes"`
	Reason          *string   `json:"reason"`
}

type CancelInterviewReq struct {
	Reason *string `json:"reason"`
}

type SetOutcomeReq struct {
	Outcome Outcome `json:"outcome" binding:"required"`
}

type PatchNotesReq struct {
	SummaryNotes   *string `json:"summary_notes,omitempty"`
	MeetingDetails *string `json:"meeting_details,omitempty"`
	Instructions   *string `json:"instructions,omitempty"`
}

type ValidateSlotReq struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`
}

type AvailabilityReq struct {
	ParticipantIDs  []uuid.UUID `json:"participant_ids" binding:"required,min=1"`
	RangeStart      time.Time   `json:"range_start" binding:"required"`
	RangeEnd        time.Time   `json:"range_end" binding:"required"`
	DurationMinutes int         `json:"duration_minutes" binding:"required"`
	StepMinutes     int         `json:"step_minutes"`
}
