package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	KindText  = "text"
	KindImage = "image"
)

// Message is append-only. The auto-increment ID is the canonical
// ordering and the clients' sync cursor; SentAt is informational only.
// IsRead means "read by the opposite role".
type Message struct {
	gorm.Model
	ConversationID uint      `gorm:"index;not null"`
	SenderRole     string    `gorm:"size:20;not null"` // "customer" or "expert"
	SenderID       uint      `gorm:"not null"`
	Text           string    `gorm:"type:text;not null"`
	Kind           string    `gorm:"size:20;not null;default:text"`
	IsRead         bool      `gorm:"not null;default:false"`
	ClientKey      string    `gorm:"size:64;index"` // per-conversation idempotency key, optional
	SentAt         time.Time `gorm:"autoCreateTime"`
}
