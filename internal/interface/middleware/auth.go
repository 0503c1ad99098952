package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/pkg/helpers"
	"github.com/oksasatya/project-tracker-api/pkg/response"
)

type TokenParser interface {
	Parse(token string) (*helpers.Claims, error)
}

type SessionReader interface {
	Get(ctx context.Context, userID string) (*entity.Session, error)
}

// Auth validates the login token and ensures the session it names is still the active one.
// It sets userID, userName, userEmail and sessionID in the Gin context on success.
func Auth(sessions SessionReader, jwt TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil || claims.Purpose != entity.PurposeLogin.String() {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		sess, err := sessions.Get(c.Request.Context(), claims.UserID)
		if err != nil || sess == nil || sess.ID != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set("userID", sess.UserID)
		c.Set("userName", sess.Name)
		c.Set("userEmail", sess.Email)
		c.Set("sessionID", sess.ID)
		c.Next()
	}
}

// bearerToken prefers the Authorization header and falls back to the session cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if v, err := c.Cookie(helpers.SessionCookie); err == nil {
		return v
	}
	return ""
}
