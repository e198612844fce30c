package store

import (
	"context"

	"gorm.io/gorm"

	"GlowCare/models"
)

// CreateUser inserts a user and, for experts, the presence row in one
// transaction (an expert without a presence row could never appear in
// the availability list).
func (s *Store) CreateUser(ctx context.Context, user *models.User, expert *models.Expert) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if expert != nil {
			expert.UserID = user.ID
			if expert.Status == "" {
				expert.Status = models.ExpertOffline
			}
			if err := tx.Create(expert).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether the email or username is already taken.
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).Count(&n).Error
	return n > 0, err
}
