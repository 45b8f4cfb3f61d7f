package postgres

import (
	"context"

	"github.com/dom/fitgate/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *conversationRepository {
	return &conversationRepository{db: db}
}

// Record keeps the first owner of a conversation id.
func (r *conversationRepository) Record(ctx context.Context, conversation *domain.Conversation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(conversation).Error
}

func (r *conversationRepository) Owns(ctx context.Context, userID domain.UserID, conversationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
