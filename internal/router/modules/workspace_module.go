package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-tracker-api/internal/container"
	handlers "github.com/oksasatya/project-tracker-api/internal/interface/http"
	"github.com/oksasatya/project-tracker-api/internal/interface/middleware"
)

// WorkspaceModule serves workspaces and their projects to signed-in members.
type WorkspaceModule struct {
	Handler *handlers.WorkspaceHandler
	C       *container.Container
}

func NewWorkspaceModule(c *container.Container) *WorkspaceModule {
	return &WorkspaceModule{Handler: handlers.NewWorkspaceHandler(c.WorkspaceService, c.Logger), C: c}
}

func (m *WorkspaceModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/workspaces")
	g.Use(middleware.Auth(m.C.Sessions, m.C.JWT))
	g.Use(middleware.RateLimit(m.C.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.POST("", m.Handler.Create)
		g.GET("", m.Handler.List)
		g.GET("/:id", m.Handler.Get)
		g.POST("/:id/members", m.Handler.InviteMember)
		g.POST("/:id/projects", m.Handler.CreateProject)
		g.GET("/:id/projects", m.Handler.ListProjects)
	}
}
