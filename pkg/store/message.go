package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"GlowCare/models"
)

// AppendMessage appends one message to a conversation's log and
// returns it (the sender displays it immediately instead of waiting
// for its next poll). When clientKey is set and a message with that
// key already exists in the conversation, the original row is returned
// instead of writing a second one, so re-sent requests after a flaky
// response cannot duplicate the log.
func (s *Store) AppendMessage(ctx context.Context, convID uint, senderRole string, senderID uint, text, kind, clientKey string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message text is required")
	}
	if kind == "" {
		kind = models.KindText
	}
	if kind != models.KindText && kind != models.KindImage {
		return nil, errors.New("unknown message kind")
	}

	db := s.db.WithContext(ctx)

	var conv models.Conversation
	if err := db.First(&conv, convID).Error; err != nil {
		return nil, err
	}
	if conv.Status == models.ConversationClosed {
		return nil, ErrConversationClosed
	}

	if clientKey != "" {
		var existing models.Message
		err := db.Where("conversation_id = ? AND client_key = ?", convID, clientKey).
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	msg := models.Message{
		ConversationID: convID,
		SenderRole:     senderRole,
		SenderID:       senderID,
		Text:           text,
		Kind:           kind,
		ClientKey:      clientKey,
		SentAt:         time.Now(),
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, err
	}

	// bump the conversation so both parties' list polls re-order it
	if err := db.Model(&models.Conversation{}).Where("id = ?", convID).
		Update("updated_at", time.Now()).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessagesSince returns all messages with id > afterID in ascending id
// order. It is a pure read: the same cursor always yields the same
// result until something new is appended, which is what makes the
// clients' polling loop safe to repeat.
func (s *Store) MessagesSince(ctx context.Context, convID, afterID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND id > ?", convID, afterID).
		Order("id ASC").Find(&msgs).Error
	return msgs, err
}

// MarkRead flips IsRead on every message in the conversation authored
// by the role opposite the reader.
func (s *Store) MarkRead(ctx context.Context, convID uint, readerRole string) error {
	return s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_role = ? AND is_read = ?",
			convID, models.OppositeRole(readerRole), false).
		Update("is_read", true).Error
}

// UnreadCount derives the reader's unread badge for a conversation:
// messages from the other role not yet marked read. Nothing stores
// this number.
func (s *Store) UnreadCount(ctx context.Context, convID uint, readerRole string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_role = ? AND is_read = ?",
			convID, models.OppositeRole(readerRole), false).
		Count(&n).Error
	return n, err
}
