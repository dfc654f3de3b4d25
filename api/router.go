package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VitaminP8/discuss/internal/auth"
)

// NewRouter регистрирует маршруты. Запросы без токена обрабатываются как анонимные.
func NewRouter(r *Resolver, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	posts := router.Group("/posts", auth.Middleware(jwtSecret))
	{
		posts.GET("", r.ListPosts)
		posts.POST("", r.CreatePost)
		posts.PUT("/:id/pin", r.PinPost)
		posts.DELETE("/:id", r.DeletePost)
		posts.POST("/:id/reactions", r.TogglePostReaction)

		posts.GET("/:id/comments", r.GetThread)
		posts.POST("/:id/comments", r.CreateComment)
		posts.PATCH("/:id/comments/:cid", r.UpdateComment)
		posts.DELETE("/:id/comments/:cid", r.DeleteComment)
		posts.POST("/:id/comments/:cid/reactions", r.ToggleCommentReaction)
	}
	return router
}
