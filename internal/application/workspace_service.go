package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker-api/internal/domain/repository"
	"github.com/oksasatya/project-tracker-api/pkg/apperror"
)

const (
	MinWorkspaceNameLen = 3
	MinProjectTitleLen  = 3

	MsgWorkspaceNotFound  = "Workspace not found"
	MsgWorkspaceName      = "Name must be at least 3 characters"
	MsgProjectTitle       = "Title must be at least 3 characters"
	MsgInviteForbidden    = "Only workspace owners and admins can invite members"
	MsgProjectForbidden   = "Viewers cannot create projects"
	MsgAlreadyMember      = "User is already a member of this workspace"
	MsgInvalidRole        = "Invalid member role"
	MsgInvalidStatus      = "Invalid project status"
	MsgInvalidDate        = "Dates must be YYYY-MM-DD or RFC 3339"
	MsgDueBeforeStart     = "Due date cannot be before start date"
	MsgMemberOutsideSpace = "Project members must belong to the workspace"
)

type WorkspaceDeps struct {
	Workspaces repo.WorkspaceRepository
	Projects   repo.ProjectRepository
	Users      repo.UserRepository
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

// WorkspaceService manages workspaces, their members and their projects.
// A workspace is only visible to its members; outsiders get NotFound.
type WorkspaceService struct {
	workspaces repo.WorkspaceRepository
	projects   repo.ProjectRepository
	users      repo.UserRepository
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewWorkspaceService(d WorkspaceDeps) *WorkspaceService {
	s := &WorkspaceService{
		workspaces: d.Workspaces,
		projects:   d.Projects,
		users:      d.Users,
		logger:     d.Logger,
		now:        d.Now,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

type CreateWorkspaceInput struct {
	Name        string
	Description string
	Color       string
}

// CreateWorkspace stores a workspace owned by ownerID, who becomes its first member.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, ownerID string, in CreateWorkspaceInput) (*entity.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < MinWorkspaceNameLen {
		return nil, apperror.Validation(MsgWorkspaceName)
	}
	w := &entity.Workspace{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		OwnerID:     ownerID,
		Members: []entity.WorkspaceMembership{
			{UserID: ownerID, Role: entity.WorkspaceOwner, JoinedAt: s.now()},
		},
	}
	if err := s.workspaces.Create(ctx, w); err != nil {
		return nil, apperror.Internal("create workspace", err)
	}
	s.logger.WithFields(logrus.Fields{"workspace_id": w.ID, "user_id": ownerID}).Info("workspace created")
	return w, nil
}

func (s *WorkspaceService) ListWorkspaces(ctx context.Context, userID string) ([]entity.Workspace, error) {
	list, err := s.workspaces.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("list workspaces", err)
	}
	return list, nil
}

// GetWorkspace returns the workspace and the caller's role in it.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, userID, workspaceID string) (*entity.Workspace, entity.WorkspaceRole, error) {
	w, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", apperror.NotFound(MsgWorkspaceNotFound)
		}
		return nil, "", apperror.Internal("lookup workspace", err)
	}
	role, ok := w.RoleOf(userID)
	if !ok {
		return nil, "", apperror.NotFound(MsgWorkspaceNotFound)
	}
	return w, role, nil
}

type InviteMemberInput struct {
	Email string
	Role  entity.WorkspaceRole
}

// InviteMember adds an existing account to the workspace. Accounts are found
// by email, typically after a lookup through the user directory.
func (s *WorkspaceService) InviteMember(ctx context.Context, actorID, workspaceID string, in InviteMemberInput) (*entity.Workspace, error) {
	w, role, err := s.GetWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !role.CanManage() {
		return nil, apperror.Forbidden(MsgInviteForbidden)
	}
	if !in.Role.Invitable() {
		return nil, apperror.Validation(MsgInvalidRole)
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, apperror.Internal("lookup user", err)
	}

	m := entity.WorkspaceMembership{UserID: u.ID, Role: in.Role, JoinedAt: s.now()}
	if err := s.workspaces.AddMember(ctx, w.ID, m); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, apperror.Conflict(MsgAlreadyMember)
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperror.NotFound(MsgWorkspaceNotFound)
		}
		return nil, apperror.Internal("add workspace member", err)
	}
	w.Members = append(w.Members, m)
	s.logger.WithFields(logrus.Fields{"workspace_id": w.ID, "user_id": u.ID, "role": in.Role}).Info("workspace member added")
	return w, nil
}

type ProjectMemberInput struct {
	UserID string
	Role   entity.ProjectRole
}

type CreateProjectInput struct {
	Title       string
	Description string
	Status      entity.ProjectStatus
	StartDate   string
	DueDate     string
	Members     []ProjectMemberInput
	// Tags is a comma separated list.
	Tags string
}

// CreateProject adds a project to the workspace. The creator is listed as
// manager unless the input already names them.
func (s *WorkspaceService) CreateProject(ctx context.Context, actorID, workspaceID string, in CreateProjectInput) (*entity.Project, error) {
	w, role, err := s.GetWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !role.CanWrite() {
		return nil, apperror.Forbidden(MsgProjectForbidden)
	}

	title := strings.TrimSpace(in.Title)
	if len(title) < MinProjectTitleLen {
		return nil, apperror.Validation(MsgProjectTitle)
	}
	if !in.Status.Valid() {
		return nil, apperror.Validation(MsgInvalidStatus)
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if due.Before(start) {
		return nil, apperror.Validation(MsgDueBeforeStart)
	}

	members, err := projectMembers(w, actorID, in.Members)
	if err != nil {
		return nil, err
	}

	p := &entity.Project{
		WorkspaceID: w.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		StartDate:   start,
		DueDate:     due,
		Members:     members,
		Tags:        splitTags(in.Tags),
		CreatedBy:   actorID,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(MsgWorkspaceNotFound)
		}
		return nil, apperror.Internal("create project", err)
	}
	s.logger.WithFields(logrus.Fields{"workspace_id": w.ID, "project_id": p.ID, "user_id": actorID}).Info("project created")
	return p, nil
}

func (s *WorkspaceService) ListProjects(ctx context.Context, userID, workspaceID string) ([]entity.Project, error) {
	w, _, err := s.GetWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	list, err := s.projects.ListByWorkspace(ctx, w.ID)
	if err != nil {
		return nil, apperror.Internal("list projects", err)
	}
	return list, nil
}

func projectMembers(w *entity.Workspace, creatorID string, in []ProjectMemberInput) ([]entity.ProjectMember, error) {
	out := make([]entity.ProjectMember, 0, len(in)+1)
	seen := map[string]bool{}
	for _, m := range in {
		if !m.Role.Valid() {
			return nil, apperror.Validation(MsgInvalidRole)
		}
		if _, ok := w.RoleOf(m.UserID); !ok {
			return nil, apperror.Validation(MsgMemberOutsideSpace)
		}
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		out = append(out, entity.ProjectMember{UserID: m.UserID, Role: m.Role})
	}
	if !seen[creatorID] {
		out = append(out, entity.ProjectMember{UserID: creatorID, Role: entity.ProjectManager})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.Validation(MsgInvalidDate)
}

// splitTags trims and de-duplicates a comma separated list, keeping order.
func splitTags(raw string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
