package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/errors"
)

// validates bearer tokens and adds user info to context
func AuthMiddleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := v.Validate(parts[1])
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// validates the token query parameter; browsers cannot set headers on
// websocket upgrades
func QueryTokenMiddleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			errors.Unauthorized(c, "token query parameter required")
			c.Abort()
			return
		}

		claims, err := v.Validate(token)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// rejects non-admin accounts; must run after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			errors.Forbidden(c, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	return userID, userID != ""
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set("user_id", claims.UserID())
	c.Set("user_email", claims.Email)
	c.Set("is_admin", claims.IsAdmin())
}
