package store

import (
	"errors"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"GlowCare/models"
)

var (
	// ErrAlreadyAssigned is the accept-race loser's result: the
	// conversation exists but some other expert got there first.
	ErrAlreadyAssigned    = errors.New("conversation already assigned")
	ErrExpertUnavailable  = errors.New("expert is not available")
	ErrConversationClosed = errors.New("conversation is closed")
	ErrInvalidStatus      = errors.New("invalid presence status")
)

// Store owns the Conversation, Message, User and Expert rows. All
// coordination between polling clients goes through it; nothing else
// writes these tables.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to MySQL when a DSN is configured, sqlite otherwise.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	if dsn != "" {
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}
	if sqlitePath == "" {
		sqlitePath = "app.db"
	}
	return gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Expert{}, &models.Conversation{}, &models.Message{})
}
