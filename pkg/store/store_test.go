package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/sqlite"

	"GlowCare/models"
)

// newTestStore opens a private in-memory database per test. The pool
// is pinned to one connection: it keeps the memory DB alive and makes
// concurrent-accept tests deterministic on sqlite.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return New(db)
}

func seedExpert(t *testing.T, s *Store, userID uint, status string, lastActivity time.Time) {
	t.Helper()
	exp := models.Expert{
		UserID:       userID,
		DisplayName:  fmt.Sprintf("expert-%d", userID),
		Status:       status,
		LastActivity: lastActivity,
	}
	require.NoError(t, s.db.Create(&exp).Error)
}
