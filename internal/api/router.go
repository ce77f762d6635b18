package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/brandpilot/internal/api/handler"
	"github.com/d60-Lab/brandpilot/internal/api/middleware"
	"github.com/d60-Lab/brandpilot/internal/service"
)

// NewRouter 组装路由与中间件
func NewRouter(h *handler.Handler, auth *service.AuthService, mode string) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("brandpilot"))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		authed := v1.Group("", middleware.JWTAuth(auth))
		{
			authed.POST("/posts", h.CreatePost)
			authed.GET("/posts", h.ListPosts)
			authed.GET("/posts/:id", h.GetPost)
			authed.PUT("/posts/:id", h.UpdatePost)
			authed.DELETE("/posts/:id", h.DeletePost)
			authed.POST("/posts/:id/publish", h.PublishPost)
			authed.POST("/posts/:id/reschedule", h.ReschedulePost)

			authed.PUT("/credentials", h.PutCredential)
			authed.GET("/credentials", h.ListCredentials)
			authed.DELETE("/credentials/:platform", h.DeleteCredential)

			authed.GET("/notifications", h.ListNotifications)
			authed.POST("/notifications/:id/read", h.ReadNotification)

			authed.GET("/settings/autopost", h.GetAutoPost)
			authed.PUT("/settings/autopost", h.SetAutoPost)

			authed.GET("/credits", h.GetCredits)
			authed.GET("/credits/history", h.ListCreditHistory)

			admin := authed.Group("/admin", middleware.AdminOnly())
			{
				admin.GET("/users", h.AdminListUsers)
				admin.PUT("/users/:id/active", h.AdminSetUserActive)
				admin.GET("/stats", h.AdminStats)
			}
		}
	}
	return r
}
