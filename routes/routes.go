package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"GlowCare/middleware"
	"GlowCare/pkg/config"
	"GlowCare/pkg/store"

	authRoutes "GlowCare/routes/auth"
	convRoutes "GlowCare/routes/conversation"
	messageRoutes "GlowCare/routes/message"
	presenceRoutes "GlowCare/routes/presence"
)

func RegisterRoutes(r *gin.Engine, s *store.Store) {
	// the root banner doubles as client config: polling cadence is
	// server-chosen, clients just follow it
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"msg":                  "consultation backend running",
			"message_poll_seconds": config.MessagePollSeconds,
			"list_poll_seconds":    config.ListPollSeconds,
			"heartbeat_seconds":    config.HeartbeatSeconds,
		})
	})

	authRoutes.RegisterPublic(r, s)
	presenceRoutes.RegisterPublic(r, s)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, s)
	convRoutes.Register(protected, s)
	messageRoutes.Register(protected, s)
	presenceRoutes.Register(protected, s)
}
