package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/fitgate/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection          = "users"
	sessionsCollection       = "user_sessions"
	passwordResetsCollection = "password_resets"
	conversationsCollection  = "conversations"

	usernameIndex = "username_unique"
	emailIndex    = "email_unique"

	duplicateKeyCode = 11000
)

func NewConnection(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

// EnsureIndexes creates the unique and TTL indexes the repositories rely on.
// Username uniqueness is enforced here, not by a lookup before insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(emailIndex).
					SetPartialFilterExpression(bson.D{{Key: "email", Value: bson.D{{Key: "$type", Value: "string"}}}}),
			},
		},
		sessionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		conversationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		passwordResetsCollection: {
			{Keys: bson.D{{Key: "token_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func NewRepositories(db *mongo.Database) *repository.Repositories {
	return &repository.Repositories{
		User:          NewUserRepository(db),
		Session:       NewSessionRepository(db),
		PasswordReset: NewPasswordResetRepository(db),
		Conversation:  NewConversationRepository(db),
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}
