package conversation

import (
	"github.com/gin-gonic/gin"

	"GlowCare/controllers"
	"GlowCare/middleware"
	"GlowCare/models"
	"GlowCare/pkg/store"
)

// Register registers conversation routes (protected)
func Register(g *gin.RouterGroup, s *store.Store) {
	g.POST("/conversations", middleware.RequireRole(models.RoleCustomer), controllers.StartConversation(s))
	g.GET("/conversations", controllers.ListConversations(s))
	g.GET("/conversations/waiting", middleware.RequireRole(models.RoleExpert), controllers.ListWaitingConversations(s))
	g.PUT("/conversations/:conversation_id/accept", middleware.RequireRole(models.RoleExpert), controllers.AcceptConversation(s))
	g.PUT("/conversations/:conversation_id/close", controllers.CloseConversation(s))
}
