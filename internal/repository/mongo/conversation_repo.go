package mongo

import (
	"context"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type conversationDocument struct {
	ID        string             `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

type conversationRepository struct {
	coll *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *conversationRepository {
	return &conversationRepository{coll: db.Collection(conversationsCollection)}
}

// Record keeps the first owner of a conversation id.
func (r *conversationRepository) Record(ctx context.Context, conversation *domain.Conversation) error {
	userID, err := objectID(conversation.UserID)
	if err != nil {
		return err
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	_, err = r.coll.InsertOne(ctx, &conversationDocument{
		ID:        conversation.ID,
		UserID:    userID,
		CreatedAt: conversation.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *conversationRepository) Owns(ctx context.Context, userID domain.UserID, conversationID string) (bool, error) {
	oid, err := objectID(userID)
	if err != nil {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "_id", Value: conversationID},
		{Key: "user_id", Value: oid},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
