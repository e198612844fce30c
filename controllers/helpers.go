package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"GlowCare/middleware"
	"GlowCare/models"
)

func currentUserID(c *gin.Context) uint {
	raw, _ := c.Get(middleware.ContextUserIDKey)
	s, _ := raw.(string)
	id, _ := strconv.Atoi(s)
	return uint(id)
}

func currentRole(c *gin.Context) string {
	raw, _ := c.Get(middleware.ContextRoleKey)
	role, _ := raw.(string)
	return role
}

func messageJSON(m models.Message) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_role":     m.SenderRole,
		"sender_id":       m.SenderID,
		"text":            m.Text,
		"kind":            m.Kind,
		"is_read":         m.IsRead,
		"sent_at":         m.SentAt,
	}
}

func conversationJSON(conv models.Conversation, unread int64) gin.H {
	return gin.H{
		"id":           conv.ID,
		"customer_id":  conv.CustomerID,
		"expert_id":    conv.ExpertID,
		"status":       conv.Status,
		"created_at":   conv.CreatedAt,
		"updated_at":   conv.UpdatedAt,
		"unread_count": unread,
	}
}

// isParticipant reports whether the principal may read/write the
// conversation: the owning customer, or the assigned expert.
func isParticipant(conv *models.Conversation, userID uint, role string) bool {
	switch role {
	case models.RoleCustomer:
		return conv.CustomerID == userID
	case models.RoleExpert:
		return conv.ExpertID != nil && *conv.ExpertID == userID
	}
	return false
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
