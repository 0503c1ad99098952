package repository

import (
	"context"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

type WorkspaceRepository interface {
	// Create stores w with its members and fills ID and timestamps.
	Create(ctx context.Context, w *entity.Workspace) error
	GetByID(ctx context.Context, id string) (*entity.Workspace, error)
	// ListForUser returns the workspaces userID belongs to, newest first.
	ListForUser(ctx context.Context, userID string) ([]entity.Workspace, error)
	// AddMember appends m. ErrDuplicate when the user is already a member,
	// ErrNotFound when the workspace does not exist.
	AddMember(ctx context.Context, workspaceID string, m entity.WorkspaceMembership) error
}

type ProjectRepository interface {
	// Create stores p with its members and fills ID and timestamps.
	Create(ctx context.Context, p *entity.Project) error
	// ListByWorkspace returns the workspace's projects, newest first.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]entity.Project, error)
}
