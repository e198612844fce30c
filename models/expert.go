package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ExpertActive  = "active"
	ExpertBusy    = "busy"
	ExpertOffline = "offline"
)

// Expert holds the presence state of an expert user. Only
// Status=active experts are shown to customers or considered for
// quick-consultation assignment; LastActivity is refreshed by every
// status write and heartbeat and is what the reaper sweeps on.
type Expert struct {
	gorm.Model
	UserID       uint   `gorm:"uniqueIndex;not null"`
	DisplayName  string `gorm:"size:120"`
	Specialty    string `gorm:"size:120"`
	Status       string `gorm:"size:20;not null;default:offline;index"`
	LastActivity time.Time
}

// ValidExpertStatus reports whether s is one of the three presence states.
func ValidExpertStatus(s string) bool {
	return s == ExpertActive || s == ExpertBusy || s == ExpertOffline
}
