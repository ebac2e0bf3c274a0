package admin

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, repo AccountAdmin, verifier *auth.Verifier) {
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(verifier), auth.AdminMiddleware())

	admin.GET("/accounts", ListAccounts(repo))
	admin.POST("/accounts/:id/credits", AdjustCredits(repo))
}
