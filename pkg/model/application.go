package model

type ApplicationStatus string

const (
	ApplicationSubmitted    ApplicationStatus = "submitted"
	ApplicationUnderReview  ApplicationStatus = "under_review"
	ApplicationShortlisted  ApplicationStatus = "shortlisted"
	ApplicationInterviewing ApplicationStatus = "interviewing"
	ApplicationOffered      ApplicationStatus = "offered"
	ApplicationHired        ApplicationStatus = "hired"
	ApplicationRejected     ApplicationStatus = "rejected"
	ApplicationWithdrawn    ApplicationStatus = "withdrawn"
)

// AllowsInterview reports whether an application in this status may get a new
// interview round.
func (s ApplicationStatus) AllowsInterview() bool {
	switch s {
	case ApplicationUnderReview, ApplicationShortlisted, ApplicationInterviewing:
		return true
	default:
		return false
	}
}
