package entity

import "time"

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectOnHold     ProjectStatus = "On Hold"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type ProjectRole string

const (
	ProjectManager     ProjectRole = "manager"
	ProjectContributor ProjectRole = "contributor"
	ProjectViewer      ProjectRole = "viewer"
)

func (r ProjectRole) Valid() bool {
	return r == ProjectManager || r == ProjectContributor || r == ProjectViewer
}

type ProjectMember struct {
	UserID string
	Role   ProjectRole
}

// Project belongs to one workspace; every member is also a workspace member.
type Project struct {
	ID          string
	WorkspaceID string
	Title       string
	Description string
	Status      ProjectStatus
	StartDate   time.Time
	DueDate     time.Time
	Members     []ProjectMember
	Tags        []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
