package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"GlowCare/middleware"
	"GlowCare/pkg/config"
	"GlowCare/pkg/presence"
	"GlowCare/pkg/store"
	tokenstore "GlowCare/pkg/token"
	"GlowCare/routes"
)

func main() {
	// config init via package init()

	db, err := store.Open(config.DatabaseDSN, config.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	if config.RedisURL != "" {
		if err := tokenstore.UseRedis(config.RedisURL); err != nil {
			log.Printf("[main] redis unavailable, token revocation stays in-memory: %v", err)
		}
	}

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)
	middleware.SetDuplicateTTL(time.Duration(config.DuplicateWindowSeconds) * time.Second)

	s := store.New(db)

	// the offline beacon is best-effort; this loop is what actually
	// clears presence for crashed/closed expert sessions
	reaper := presence.NewReaper(s,
		time.Duration(config.ReaperIntervalSeconds)*time.Second,
		time.Duration(config.PresenceTimeoutSeconds)*time.Second,
	)
	go reaper.Run(context.Background())

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, s)
	r.Run(":" + config.Port)
}
