package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-tracker-api/internal/container"
	handlers "github.com/oksasatya/project-tracker-api/internal/interface/http"
	"github.com/oksasatya/project-tracker-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	C       *container.Container
}

func NewAuthModule(c *container.Container) *AuthModule {
	return &AuthModule{
		Handler: handlers.NewAuthHandler(c.AuthService, c.Cookies, c.Logger),
		C:       c,
	}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := m.C.Redis
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	grp := rg.Group("/auth")
	grp.POST("/register", registerLimiter, m.Handler.Register)
	grp.POST("/login", loginLimiter, m.Handler.Login)
	grp.POST("/verify-email", verifyLimiter, m.Handler.VerifyEmail)
	grp.POST("/reset-password-request", resetInitLimiter, m.Handler.ResetPasswordRequest)
	grp.POST("/reset-password", resetConfirmLimiter, m.Handler.ResetPassword)

	grp.POST("/logout", middleware.Auth(m.C.Sessions, m.C.JWT), m.Handler.Logout)
}
