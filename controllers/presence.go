package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"GlowCare/models"
	"GlowCare/pkg/cache"
	"GlowCare/pkg/config"
	"GlowCare/pkg/store"
)

const activeExpertsCacheKey = "experts:active"

func invalidateActiveExperts() {
	cache.Default().Delete(activeExpertsCacheKey)
}

// SetExpertStatus handles the explicit presence toggle (active/busy)
// and the explicit offline on clean logout paths.
func SetExpertStatus(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "status is required"})
			return
		}
		if !models.ValidExpertStatus(body.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "status must be 'active', 'busy' or 'offline'"})
			return
		}

		if err := s.SetExpertStatus(c.Request.Context(), currentUserID(c), body.Status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"msg": "expert profile not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to set status"})
			return
		}
		invalidateActiveExperts()
		c.JSON(http.StatusOK, gin.H{"msg": "status updated", "status": body.Status})
	}
}

// Heartbeat refreshes the expert's LastActivity. It never changes the
// chosen status, so a deliberate busy survives and a reaped offline
// session is not silently resurrected.
func Heartbeat(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Heartbeat(c.Request.Context(), currentUserID(c)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"msg": "expert profile not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "heartbeat failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	}
}

// OfflineBeacon is the fire-and-forget signal on page teardown.
// sendBeacon cannot set auth headers, so this route is public. It can
// only ever demote the named expert to offline, and the reaper
// corrects any expert the beacon missed anyway. Always answers 204.
func OfflineBeacon(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ExpertID uint `json:"expert_id"`
		}
		if err := c.ShouldBindJSON(&body); err == nil && body.ExpertID != 0 {
			_ = s.SetExpertStatus(c.Request.Context(), body.ExpertID, models.ExpertOffline)
			invalidateActiveExperts()
		}
		c.Status(http.StatusNoContent)
	}
}

// ListActiveExperts is the customer-facing availability list, cached
// for a few seconds so every client's list poll does not hit the DB.
func ListActiveExperts(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := cache.Default().Get(activeExpertsCacheKey); ok {
			c.JSON(http.StatusOK, v)
			return
		}

		experts, err := s.ActiveExperts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		result := make([]gin.H, 0, len(experts))
		for _, e := range experts {
			result = append(result, gin.H{
				"user_id":      e.UserID,
				"display_name": e.DisplayName,
				"specialty":    e.Specialty,
				"status":       e.Status,
			})
		}
		cache.Default().Set(activeExpertsCacheKey, result,
			time.Duration(config.ExpertCacheTTLSeconds)*time.Second)
		c.JSON(http.StatusOK, result)
	}
}
