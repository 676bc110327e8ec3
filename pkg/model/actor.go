package model

import (
	"slices"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleHRManager   UserRole = "hr_manager"
	RoleRecruiter   UserRole = "recruiter"
	RoleInterviewer UserRole = "interviewer"
	RoleCandidate   UserRole = "candidate"
)

// ActorContext identifies who is calling a core operation.
type ActorContext struct {
	UserID uuid.UUID  `json:"user_id"`
	Roles  []UserRole `json:"roles"`
}

func (a ActorContext) HasRole(role UserRole) bool {
	return slices.Contains(a.Roles, role)
}

func (a ActorContext) IsPrivilegedStaff() bool {
	return a.HasRole(RoleAdmin) || a.HasRole(RoleHRManager)
}

func (a ActorContext) IsRecruiter() bool {
	return a.HasRole(RoleRecruiter)
}
