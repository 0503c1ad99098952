package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-tracker-api/internal/container"
	handlers "github.com/oksasatya/project-tracker-api/internal/interface/http"
	"github.com/oksasatya/project-tracker-api/internal/interface/middleware"
)

// UserModule serves the signed-in user's profile and the user directory.
// Every route requires a session.
type UserModule struct {
	Handler *handlers.UserHandler
	C       *container.Container
}

func NewUserModule(c *container.Container) *UserModule {
	return &UserModule{Handler: handlers.NewUserHandler(c.UserService, c.Logger), C: c}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := m.C.Redis
	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.C.Sessions, m.C.JWT))
	auth.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/me", m.Handler.GetProfile)
		auth.PUT("/me", m.Handler.UpdateProfile)
		auth.POST("/me/avatar", m.Handler.UploadAvatar)
		auth.GET("/search", m.Handler.Search)
	}
}
