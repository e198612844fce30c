package message

import (
	"github.com/gin-gonic/gin"

	"GlowCare/controllers"
	"GlowCare/middleware"
	"GlowCare/pkg/store"
)

// Register registers message routes (protected). Sends are
// rate-limited; reads are cheap and polled every couple of seconds.
func Register(g *gin.RouterGroup, s *store.Store) {
	g.POST("/messages", middleware.RateLimit(), controllers.SendMessage(s))
	g.GET("/messages", controllers.FetchMessages(s))
	g.PUT("/messages/read", controllers.MarkMessagesRead(s))
}
