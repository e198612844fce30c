package models

import "gorm.io/gorm"

const (
	ConversationWaiting = "waiting"
	ConversationActive  = "active"
	ConversationClosed  = "closed"
)

// Conversation binds one customer to at most one expert.
// Status=waiting holds exactly while ExpertID is null; accept is the
// only write that sets ExpertID. closed is terminal.
type Conversation struct {
	gorm.Model
	CustomerID uint      `gorm:"not null;index"`
	ExpertID   *uint     `gorm:"index"`
	Status     string    `gorm:"size:20;not null;default:waiting;index"`
	Messages   []Message `gorm:"constraint:OnDelete:CASCADE"`
}
