// Package apperr defines the typed failures the scheduling core returns.
// Callers match them with errors.As; none of them is retried.
package apperr

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
)

// Rule names a single validation rule.
type Rule string

const (
	RuleStartInFuture  Rule = "start_in_future"
	RuleBusinessHours  Rule = "business_hours"
	RuleWeekday        Rule = "weekday"
	RuleDurationBounds Rule = "duration_bounds"
	RuleRange          Rule = "range"
	RuleInput          Rule = "input"

	RuleApplicationStatus Rule = "application_status"
)

type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Rule, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation.
func (e *ValidationError) Add(rule Rule, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether rule was violated.
func (e *ValidationError) Has(rule Rule) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// OrNil returns nil when nothing was violated, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-violation ValidationError.
func Invalid(rule Rule, format string, args ...any) *ValidationError {
	e := &ValidationError{}
	e.Add(rule, format, args...)
	return e
}

type ConflictError struct {
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Conflicts []model.BusyWindow `json:"conflicts"`
	Reason    string             `json:"reason,omitempty"`
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return "scheduling conflict: " + e.Reason
	}
	return fmt.Sprintf("scheduling conflict: [%s, %s) overlaps %d scheduled slot(s)",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), len(e.Conflicts))
}

type StateError struct {
	InterviewID uuid.UUID    `json:"interview_id"`
	Current     model.Status `json:"current"`
	Operation   string       `json:"operation"`
}

func (e *StateError) Error() string {
	return fmt.Sprintf("interview %s: cannot %s from status %s", e.InterviewID, e.Operation, e.Current)
}

type ForbiddenError struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s: %s", e.Action, e.Reason)
}

func Forbidden(action, reason string) *ForbiddenError {
	return &ForbiddenError{Action: action, Reason: reason}
}

type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id.String()}
}
