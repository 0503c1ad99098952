package dto

import (
	"time"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=80"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"required,min=3,max=32"`
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin member viewer"`
}

type ProjectMemberRequest struct {
	User string `json:"user" binding:"required"`
	Role string `json:"role" binding:"required,oneof=manager contributor viewer"`
}

// CreateProjectRequest carries dates as strings; the service accepts
// YYYY-MM-DD and RFC 3339.
type CreateProjectRequest struct {
	Title       string                 `json:"title" binding:"required,min=3,max=120"`
	Description string                 `json:"description" binding:"max=2000"`
	Status      string                 `json:"status" binding:"required"`
	StartDate   string                 `json:"startDate" binding:"required,min=10"`
	DueDate     string                 `json:"dueDate" binding:"required,min=10"`
	Members     []ProjectMemberRequest `json:"members" binding:"omitempty,dive"`
	Tags        string                 `json:"tags"`
}

type MemberResponse struct {
	User     string    `json:"user"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type WorkspaceResponse struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Color       string           `json:"color"`
	Owner       string           `json:"owner"`
	Members     []MemberResponse `json:"members"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func NewWorkspaceResponse(w *entity.Workspace) WorkspaceResponse {
	out := WorkspaceResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Color:       w.Color,
		Owner:       w.OwnerID,
		Members:     make([]MemberResponse, 0, len(w.Members)),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for _, m := range w.Members {
		out.Members = append(out.Members, MemberResponse{User: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
	}
	return out
}

func NewWorkspaceResponses(list []entity.Workspace) []WorkspaceResponse {
	out := make([]WorkspaceResponse, 0, len(list))
	for i := range list {
		out = append(out, NewWorkspaceResponse(&list[i]))
	}
	return out
}

type ProjectMemberResponse struct {
	User string `json:"user"`
	Role string `json:"role"`
}

type ProjectResponse struct {
	ID          string                  `json:"_id"`
	Workspace   string                  `json:"workspace"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Status      string                  `json:"status"`
	StartDate   time.Time               `json:"startDate"`
	DueDate     time.Time               `json:"dueDate"`
	Members     []ProjectMemberResponse `json:"members"`
	Tags        []string                `json:"tags"`
	CreatedBy   string                  `json:"createdBy"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

func NewProjectResponse(p *entity.Project) ProjectResponse {
	out := ProjectResponse{
		ID:          p.ID,
		Workspace:   p.WorkspaceID,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		Members:     make([]ProjectMemberResponse, 0, len(p.Members)),
		Tags:        p.Tags,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	for _, m := range p.Members {
		out.Members = append(out.Members, ProjectMemberResponse{User: m.UserID, Role: string(m.Role)})
	}
	return out
}

func NewProjectResponses(list []entity.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(list))
	for i := range list {
		out = append(out, NewProjectResponse(&list[i]))
	}
	return out
}
