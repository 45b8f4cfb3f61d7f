package postgres

import (
	"context"

	"github.com/dom/fitgate/internal/domain"
	"gorm.io/gorm"
)

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *passwordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.db.WithContext(ctx).First(&reset, "token_hash = ?", tokenHash).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &reset, nil
}

func (r *passwordResetRepository) DeleteByUserID(ctx context.Context, userID domain.UserID) error {
	return r.db.WithContext(ctx).Delete(&domain.PasswordReset{}, "user_id = ?", userID).Error
}
