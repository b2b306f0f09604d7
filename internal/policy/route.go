package policy

import (
	"terminal-terrace/edustream/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册 /moderation 与 /permissions
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	r.POST("/moderation/evaluate", handler.Evaluate)

	permissions := r.Group("/permissions")
	permissions.Use(middleware.JWTAuth(jwtSecret))
	{
		permissions.GET("/me", handler.Me)
		permissions.GET("/check", handler.Check)
	}
}
