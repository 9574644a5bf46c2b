package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
)

const sessionKey = "session"

// authMiddleware resolves the bearer token into a session or answers 401
func authMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "authorization token required"})
			return
		}

		session, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid or expired token"})
			return
		}

		c.Set(sessionKey, *session)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) entity.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(entity.Session); ok {
			return session
		}
	}
	return entity.Session{}
}
