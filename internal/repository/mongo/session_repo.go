package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type sessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *sessionRepository {
	return &sessionRepository{coll: db.Collection(sessionsCollection)}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	doc, err := toSessionDocument(session)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	return err
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID domain.UserID) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteMany(ctx, bson.D{{Key: "user_id", Value: oid}})
	return err
}

// DeleteExpired is mostly redundant with the TTL index, which mongod sweeps
// about once a minute.
func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lte", Value: before}}}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
