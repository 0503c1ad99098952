package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/internal/application"
	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/interface/http/dto"
	"github.com/oksasatya/project-tracker-api/pkg/response"
)

const (
	msgWorkspaceCreated = "Workspace created successfully"
	msgMemberInvited    = "Member added successfully"
	msgProjectCreated   = "Project created successfully"
)

type WorkspaceHandler struct {
	Svc    *application.WorkspaceService
	Logger logrus.FieldLogger
}

func NewWorkspaceHandler(svc *application.WorkspaceService, logger logrus.FieldLogger) *WorkspaceHandler {
	return &WorkspaceHandler{Svc: svc, Logger: logger}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if !bind(c, &req) {
		return
	}
	w, err := h.Svc.CreateWorkspace(c.Request.Context(), c.GetString("userID"), application.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, dto.NewWorkspaceResponse(w), msgWorkspaceCreated, nil)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	list, err := h.Svc.ListWorkspaces(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, dto.NewWorkspaceResponses(list), "workspaces", map[string]any{"count": len(list)})
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	w, _, err := h.Svc.GetWorkspace(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, dto.NewWorkspaceResponse(w), "workspace", nil)
}

func (h *WorkspaceHandler) InviteMember(c *gin.Context) {
	var req dto.InviteMemberRequest
	if !bind(c, &req) {
		return
	}
	w, err := h.Svc.InviteMember(c.Request.Context(), c.GetString("userID"), c.Param("id"), application.InviteMemberInput{
		Email: req.Email,
		Role:  entity.WorkspaceRole(req.Role),
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, dto.NewWorkspaceResponse(w), msgMemberInvited, nil)
}

func (h *WorkspaceHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bind(c, &req) {
		return
	}
	in := application.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.ProjectStatus(req.Status),
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	for _, m := range req.Members {
		in.Members = append(in.Members, application.ProjectMemberInput{UserID: m.User, Role: entity.ProjectRole(m.Role)})
	}
	p, err := h.Svc.CreateProject(c.Request.Context(), c.GetString("userID"), c.Param("id"), in)
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, dto.NewProjectResponse(p), msgProjectCreated, nil)
}

func (h *WorkspaceHandler) ListProjects(c *gin.Context) {
	list, err := h.Svc.ListProjects(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, dto.NewProjectResponses(list), "projects", map[string]any{"count": len(list)})
}
