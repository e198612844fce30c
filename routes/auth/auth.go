package auth

import (
	"github.com/gin-gonic/gin"

	"GlowCare/controllers"
	"GlowCare/pkg/store"
)

// RegisterPublic registers public auth routes: /register, /login
func RegisterPublic(r *gin.Engine, s *store.Store) {
	r.POST("/register", controllers.Register(s))
	r.POST("/login", controllers.Login(s))
}

// RegisterProtected registers protected auth routes (e.g. logout)
func RegisterProtected(g *gin.RouterGroup, s *store.Store) {
	g.POST("/logout", controllers.Logout(s))
}
