package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	doc, err := toUserDocument(user)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		if duplicateIndex(err) == emailIndex {
			return domain.ErrEmailTaken
		}
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error {
	oid, err := objectID(id)
	if err != nil {
		return repository.ErrNotFound
	}
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "password_hash", Value: passwordHash},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// duplicateIndex names the unique index behind an E11000 write error. The
// server message carries the offending key value too, so only the
// "index: <name>" token is inspected.
func duplicateIndex(err error) string {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return ""
	}
	for _, e := range we.WriteErrors {
		if e.Code != duplicateKeyCode {
			continue
		}
		_, rest, ok := strings.Cut(e.Message, "index: ")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, " ")
		return name
	}
	return ""
}
