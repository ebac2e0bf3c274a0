package users

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
)

func RegisterRoutes(rg *gin.RouterGroup, repo AccountReader, verifier *auth.Verifier) {
	users := rg.Group("/users")
	users.Use(auth.AuthMiddleware(verifier)) // all user routes require authentication

	users.GET("/me", GetMe(repo))
	users.GET("/me/transactions", GetTransactions(repo))
}
