package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-tracker-api/internal/container"
	"github.com/oksasatya/project-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/project-tracker-api/internal/router/modules"
	"github.com/oksasatya/project-tracker-api/pkg/response"
	"github.com/oksasatya/project-tracker-api/pkg/validation"
)

const welcomeMessage = "Welcome to the GPT App Server"

// NewEngine builds the Gin engine with global middleware and every module registered.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(gin.CustomRecovery(response.InternalError))
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if c.Config.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(c.Logger))
	}

	r.GET("/", func(ctx *gin.Context) {
		response.Success[any](ctx, http.StatusOK, nil, welcomeMessage, nil)
	})
	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "NOT FOUND"})
	})

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules registers all application modules with the registry.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewAuthModule(c))
	r.Add(modules.NewUserModule(c))
	r.Add(modules.NewWorkspaceModule(c))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c))
	}
}
