package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type passwordResetRepository struct {
	coll *mongo.Collection
}

func NewPasswordResetRepository(db *mongo.Database) *passwordResetRepository {
	return &passwordResetRepository{coll: db.Collection(passwordResetsCollection)}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now()
	}
	userID, err := objectID(reset.UserID)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, &passwordResetDocument{
		ID:        reset.ID.String(),
		UserID:    userID,
		TokenHash: reset.TokenHash,
		ExpiresAt: reset.ExpiresAt,
		CreatedAt: reset.CreatedAt,
	})
	return err
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	var doc passwordResetDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "token_hash", Value: tokenHash}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *passwordResetRepository) DeleteByUserID(ctx context.Context, userID domain.UserID) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteMany(ctx, bson.D{{Key: "user_id", Value: oid}})
	return err
}
