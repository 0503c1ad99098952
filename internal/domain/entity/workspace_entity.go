package entity

import "time"

type WorkspaceRole string

const (
	WorkspaceOwner  WorkspaceRole = "owner"
	WorkspaceAdmin  WorkspaceRole = "admin"
	WorkspaceMember WorkspaceRole = "member"
	WorkspaceViewer WorkspaceRole = "viewer"
)

// Invitable reports whether r may be granted through an invite; ownership
// is fixed at creation.
func (r WorkspaceRole) Invitable() bool {
	switch r {
	case WorkspaceAdmin, WorkspaceMember, WorkspaceViewer:
		return true
	}
	return false
}

// CanManage reports whether r may invite members.
func (r WorkspaceRole) CanManage() bool {
	return r == WorkspaceOwner || r == WorkspaceAdmin
}

// CanWrite reports whether r may create projects.
func (r WorkspaceRole) CanWrite() bool {
	return r != WorkspaceViewer && r != ""
}

type WorkspaceMembership struct {
	UserID   string
	Role     WorkspaceRole
	JoinedAt time.Time
}

// Workspace groups projects. The owner is always listed in Members.
type Workspace struct {
	ID          string
	Name        string
	Description string
	Color       string
	OwnerID     string
	Members     []WorkspaceMembership
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleOf returns the role of userID, or false when they are not a member.
func (w *Workspace) RoleOf(userID string) (WorkspaceRole, bool) {
	for _, m := range w.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}
