package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"GlowCare/middleware"
	"GlowCare/pkg/store"
)

// SendMessage appends one message and returns it so the sender can
// display it immediately instead of waiting for the next poll. The
// optional client_key makes retried requests idempotent; the duplicate
// guard additionally swallows rapid identical re-sends without a key.
func SendMessage(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ConversationID uint   `json:"conversation_id"`
			Text           string `json:"text"`
			Kind           string `json:"kind"`
			ClientKey      string `json:"client_key"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ConversationID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "conversation_id and text are required"})
			return
		}

		uid := currentUserID(c)
		role := currentRole(c)

		conv, err := s.GetConversation(c.Request.Context(), body.ConversationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		if !isParticipant(conv, uid, role) {
			c.JSON(http.StatusForbidden, gin.H{"msg": "not a participant"})
			return
		}

		if body.ClientKey == "" && !middleware.DuplicateGuard(uid, body.ConversationID, body.Text) {
			c.JSON(http.StatusConflict, gin.H{"msg": "duplicate message"})
			return
		}

		msg, err := s.AppendMessage(c.Request.Context(), body.ConversationID, role, uid, body.Text, body.Kind, body.ClientKey)
		switch {
		case errors.Is(err, store.ErrConversationClosed):
			c.JSON(http.StatusConflict, gin.H{"msg": "conversation is closed"})
			return
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, messageJSON(*msg))
	}
}

// FetchMessages is the polling read: everything with id above the
// caller's cursor, ascending. Safe to repeat with the same cursor.
func FetchMessages(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, err := strconv.ParseUint(c.Query("conversation_id"), 10, 64)
		if err != nil || convID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "conversation_id is required"})
			return
		}
		// absent cursor means initial load (cursor zero)
		afterID, _ := strconv.ParseUint(c.DefaultQuery("last_message_id", "0"), 10, 64)

		conv, err := s.GetConversation(c.Request.Context(), uint(convID))
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

		msgs, err := s.MessagesSince(c.Request.Context(), uint(convID), uint(afterID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		result := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			result = append(result, messageJSON(m))
		}
		c.JSON(http.StatusOK, result)
	}
}

// MarkMessagesRead flips the other role's messages to read on behalf
// of the caller. The sync engine calls this after every fetch that
// yields new messages.
func MarkMessagesRead(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ConversationID uint `json:"conversation_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ConversationID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "conversation_id is required"})
			return
		}

		conv, err := s.GetConversation(c.Request.Context(), body.ConversationID)
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

		if err := s.MarkRead(c.Request.Context(), body.ConversationID, currentRole(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to mark read"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "marked read"})
	}
}
