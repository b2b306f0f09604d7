package submission

import (
	"terminal-terrace/edustream/internal/middleware"
	"terminal-terrace/edustream/internal/moderation"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册 /videos 与 /articles
func RegisterRoutes(r *gin.RouterGroup, service *Service, jwtSecret string) {
	h := NewHandler(service)

	for _, kind := range []moderation.ContentKind{moderation.KindVideo, moderation.KindArticle} {
		group := r.Group("/" + string(kind) + "s")

		// 公开的已审核列表
		group.GET("", h.ListCatalog(kind))

		authRequired := group.Group("")
		authRequired.Use(middleware.JWTAuth(jwtSecret))
		{
			if kind == moderation.KindVideo {
				authRequired.POST("", h.SubmitVideo)
			} else {
				authRequired.POST("", h.SubmitArticle)
			}
			authRequired.GET("/pending", h.ListPending(kind))
			authRequired.POST("/:id/review", h.Review(kind))
		}
	}
}
