package model

import (
	"time"

	"github.com/google/uuid"
)

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

type InterviewFilter struct {
	Status           *[]Status        `json:"status" form:"status"`
	Type             *[]InterviewType `json:"type" form:"type"`
	Mode             *[]Mode          `json:"mode" form:"mode"`
	From             *time.Time       `json:"from" form:"from"`
	To               *time.Time       `json:"to" form:"to"`
	JobApplicationID *uuid.UUID       `json:"job_application_id" form:"job_application_id"`
}

type SearchInterviewsReq struct {
	Page     int              `json:"page" form:"page,default=1"`
	PageSize int              `json:"page_size" form:"page_size,default=20"`
	Order    SortOrder        `json:"order" form:"order"`
	Filter   *InterviewFilter `json:"filter" form:"filter"`
}

// InterviewQuery is the store-level query: the filter plus the access scope.
// When Scoped is set, an interview matches only if its application is in
// ScopeApplicationIDs or ScopeParticipantID takes part in it.
type InterviewQuery struct {
	Filter              InterviewFilter
	Scoped              bool
	ScopeApplicationIDs []uuid.UUID
	ScopeParticipantID  uuid.UUID
	Order               SortOrder
	Limit               int
	Offset              int
}

type InterviewPage struct {
	Items   []Interview `json:"items"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasNext bool        `json:"has_next"`
}
