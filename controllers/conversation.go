package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"GlowCare/models"
	"GlowCare/pkg/store"
)

// StartConversation creates or reuses a consultation for the calling
// customer. With expert_id it targets that expert (bound immediately
// when the expert is active); without, it is a quick consultation that
// lands in the waiting pool for any active expert to claim.
func StartConversation(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ExpertID *uint `json:"expert_id"`
		}
		// empty body = quick consultation
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		conv, created, err := s.StartConversation(c.Request.Context(), currentUserID(c), body.ExpertID)
		switch {
		case errors.Is(err, store.ErrExpertUnavailable):
			c.JSON(http.StatusConflict, gin.H{"msg": "expert is not available"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to start conversation"})
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, conversationJSON(*conv, 0))
	}
}

// ListConversations returns the caller's conversations with derived
// unread counts, most recently touched first. Clients poll this on
// their list interval.
func ListConversations(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := currentUserID(c)
		role := currentRole(c)

		var (
			convs []models.Conversation
			err   error
		)
		if role == models.RoleExpert {
			convs, err = s.ConversationsForExpert(c.Request.Context(), uid)
		} else {
			convs, err = s.ConversationsForCustomer(c.Request.Context(), uid)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		result := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			unread, err := s.UnreadCount(c.Request.Context(), conv.ID, role)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
				return
			}
			result = append(result, conversationJSON(conv, unread))
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListWaitingConversations shows experts the unassigned pool, oldest
// request first.
func ListWaitingConversations(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convs, err := s.WaitingConversations(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		result := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			result = append(result, conversationJSON(conv, 0))
		}
		c.JSON(http.StatusOK, result)
	}
}

// AcceptConversation claims a waiting conversation for the calling
// expert, who must be Status=active. Exactly one of any number of
// concurrent accepts succeeds; losers get 409 and should refresh
// their waiting list.
func AcceptConversation(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := parseUintParam(c, "conversation_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid conversation id"})
			return
		}

		conv, err := s.AcceptConversation(c.Request.Context(), convID, currentUserID(c))
		switch {
		case errors.Is(err, store.ErrExpertUnavailable):
			c.JSON(http.StatusConflict, gin.H{"msg": "expert is not available"})
			return
		case errors.Is(err, store.ErrConversationClosed):
			c.JSON(http.StatusConflict, gin.H{"msg": "conversation is closed"})
			return
		case errors.Is(err, store.ErrAlreadyAssigned):
			c.JSON(http.StatusConflict, gin.H{"msg": "already assigned"})
			return
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to accept conversation"})
			return
		}
		c.JSON(http.StatusOK, conversationJSON(*conv, 0))
	}
}

// CloseConversation ends a consultation. Either participant may close;
// closed is terminal.
func CloseConversation(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := parseUintParam(c, "conversation_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid conversation id"})
			return
		}

		conv, err := s.GetConversation(c.Request.Context(), convID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		if !isParticipant(conv, currentUserID(c), currentRole(c)) {
			c.JSON(http.StatusForbidden, gin.H{"msg": "not a participant"})
			return
		}

		conv, err = s.CloseConversation(c.Request.Context(), convID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to close conversation"})
			return
		}
		c.JSON(http.StatusOK, conversationJSON(*conv, 0))
	}
}
