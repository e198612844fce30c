package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"GlowCare/models"
)

// StartConversation creates or reuses a conversation for the customer.
//
// Targeted (expertID != nil): an existing non-closed conversation for
// the (customer, expert) pair is returned unchanged, so repeatedly
// contacting the same expert never piles up duplicates. Otherwise a
// new conversation is created directly bound to the expert, but only
// if that expert is Status=active right now; a non-active target is
// rejected rather than ever bound.
//
// Quick consultation (expertID == nil): reuse the customer's
// unassigned waiting conversation if one exists, else create one.
//
// The second return value is true when a new row was created.
func (s *Store) StartConversation(ctx context.Context, customerID uint, expertID *uint) (*models.Conversation, bool, error) {
	db := s.db.WithContext(ctx)

	if expertID != nil {
		var conv models.Conversation
		err := db.Where("customer_id = ? AND expert_id = ? AND status <> ?",
			customerID, *expertID, models.ConversationClosed).
			Order("id DESC").First(&conv).Error
		if err == nil {
			return &conv, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}

		var exp models.Expert
		if err := db.Where("user_id = ?", *expertID).First(&exp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, ErrExpertUnavailable
			}
			return nil, false, err
		}
		if exp.Status != models.ExpertActive {
			return nil, false, ErrExpertUnavailable
		}

		conv = models.Conversation{
			CustomerID: customerID,
			ExpertID:   expertID,
			Status:     models.ConversationActive,
		}
		if err := db.Create(&conv).Error; err != nil {
			return nil, false, err
		}
		return &conv, true, nil
	}

	var conv models.Conversation
	err := db.Where("customer_id = ? AND expert_id IS NULL AND status = ?",
		customerID, models.ConversationWaiting).
		Order("id DESC").First(&conv).Error
	if err == nil {
		return &conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	conv = models.Conversation{CustomerID: customerID, Status: models.ConversationWaiting}
	if err := db.Create(&conv).Error; err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

// AcceptConversation binds a waiting conversation to one expert. Only
// a Status=active expert may claim work; a reaped or busy expert whose
// token is still valid gets ErrExpertUnavailable. The conversation
// guard (still waiting, expert_id still null) is evaluated inside a
// single conditional UPDATE, so of any number of racing accepts
// exactly one row write succeeds; everyone else gets
// ErrAlreadyAssigned (or ErrConversationClosed if the conversation
// was closed in the meantime).
func (s *Store) AcceptConversation(ctx context.Context, convID, expertUserID uint) (*models.Conversation, error) {
	db := s.db.WithContext(ctx)

	var exp models.Expert
	if err := db.Where("user_id = ?", expertUserID).First(&exp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpertUnavailable
		}
		return nil, err
	}
	if exp.Status != models.ExpertActive {
		return nil, ErrExpertUnavailable
	}

	res := db.Model(&models.Conversation{}).
		Where("id = ? AND expert_id IS NULL AND status = ?", convID, models.ConversationWaiting).
		Updates(map[string]any{
			"expert_id": expertUserID,
			"status":    models.ConversationActive,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var conv models.Conversation
	if err := db.First(&conv, convID).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		if conv.Status == models.ConversationClosed {
			return nil, ErrConversationClosed
		}
		return nil, ErrAlreadyAssigned
	}
	return &conv, nil
}

// CloseConversation marks a conversation closed. Closing is terminal
// and idempotent: closing an already-closed conversation is a no-op.
func (s *Store) CloseConversation(ctx context.Context, convID uint) (*models.Conversation, error) {
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Conversation{}).
		Where("id = ? AND status <> ?", convID, models.ConversationClosed).
		Update("status", models.ConversationClosed).Error; err != nil {
		return nil, err
	}

	var conv models.Conversation
	if err := db.First(&conv, convID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Store) GetConversation(ctx context.Context, convID uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, convID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// ConversationsForCustomer lists the customer's conversations, most
// recently touched first (sends and accepts both bump UpdatedAt).
func (s *Store) ConversationsForCustomer(ctx context.Context, customerID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("updated_at DESC").Find(&convs).Error
	return convs, err
}

// ConversationsForExpert lists conversations assigned to the expert.
func (s *Store) ConversationsForExpert(ctx context.Context, expertUserID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("expert_id = ?", expertUserID).
		Order("updated_at DESC").Find(&convs).Error
	return convs, err
}

// WaitingConversations returns the unassigned pool, oldest request
// first, which is the order experts should claim them in.
func (s *Store) WaitingConversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("expert_id IS NULL AND status = ?", models.ConversationWaiting).
		Order("created_at ASC, id ASC").Find(&convs).Error
	return convs, err
}
