package router

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/paperlog/internal/config"
	"github.com/paperlog/internal/handler"
	"github.com/rs/zerolog/log"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("paperlog_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 公开路由
	r.GET("/posts", api.ShowPublishedIndex)
	r.GET("/posts/:slug", api.ShowPost)
	r.GET("/preview/:token", api.ShowPreview)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/api/login", api.Login)
		admin.POST("/api/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("/api")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/posts", api.ListPosts)
			auth.POST("/posts/save", api.SavePost)
			auth.GET("/posts/:id", api.GetPost)
			auth.DELETE("/posts/:id", api.DeletePost)

			auth.GET("/posts/:id/versions", api.ListVersions)
			auth.POST("/posts/:id/versions", api.CreateVersion)
			auth.POST("/posts/:id/versions/:versionId/restore", api.RestoreVersion)

			auth.POST("/posts/:id/preview", api.IssuePreview)
			auth.GET("/posts/:id/preview", api.PreviewStatus)
			auth.DELETE("/posts/:id/preview", api.RevokePreview)
		}
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
