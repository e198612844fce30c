package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"GlowCare/models"
)

// SetExpertStatus sets an expert's presence and stamps LastActivity.
// Used for login (force active), manual active/busy toggles and the
// best-effort offline signal.
func (s *Store) SetExpertStatus(ctx context.Context, expertUserID uint, status string) error {
	if !models.ValidExpertStatus(status) {
		return ErrInvalidStatus
	}
	res := s.db.WithContext(ctx).Model(&models.Expert{}).
		Where("user_id = ?", expertUserID).
		Updates(map[string]any{
			"status":        status,
			"last_activity": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Heartbeat refreshes LastActivity and nothing else: a deliberately
// chosen busy state survives heartbeats, and a reaped offline expert
// is not silently resurrected. Only an explicit status set does that.
func (s *Store) Heartbeat(ctx context.Context, expertUserID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Expert{}).
		Where("user_id = ?", expertUserID).
		Update("last_activity", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActiveExperts lists experts customers may target right now.
func (s *Store) ActiveExperts(ctx context.Context) ([]models.Expert, error) {
	var experts []models.Expert
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ExpertActive).
		Order("display_name ASC").Find(&experts).Error
	return experts, err
}

// SweepStaleExperts forces active/busy experts whose LastActivity is
// older than threshold to offline and reports how many were flipped.
// Concurrent heartbeats racing the sweep are fine: last write wins,
// and a freshly-stamped row simply no longer matches the WHERE.
func (s *Store) SweepStaleExperts(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	res := s.db.WithContext(ctx).Model(&models.Expert{}).
		Where("status IN ? AND last_activity < ?",
			[]string{models.ExpertActive, models.ExpertBusy}, cutoff).
		Update("status", models.ExpertOffline)
	return res.RowsAffected, res.Error
}

// ExpertByUserID loads the presence row for an expert user.
func (s *Store) ExpertByUserID(ctx context.Context, userID uint) (*models.Expert, error) {
	var exp models.Expert
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&exp).Error; err != nil {
		return nil, err
	}
	return &exp, nil
}
