package presence

import (
	"github.com/gin-gonic/gin"

	"GlowCare/controllers"
	"GlowCare/middleware"
	"GlowCare/models"
	"GlowCare/pkg/store"
)

// RegisterPublic registers the offline beacon: sendBeacon cannot carry
// auth headers and the signal may never arrive at all.
func RegisterPublic(r *gin.Engine, s *store.Store) {
	r.POST("/presence/offline", controllers.OfflineBeacon(s))
}

// Register registers protected presence routes.
func Register(g *gin.RouterGroup, s *store.Store) {
	g.PUT("/presence", middleware.RequireRole(models.RoleExpert), controllers.SetExpertStatus(s))
	g.POST("/presence/heartbeat", middleware.RequireRole(models.RoleExpert), controllers.Heartbeat(s))
	g.GET("/experts/active", controllers.ListActiveExperts(s))
}
