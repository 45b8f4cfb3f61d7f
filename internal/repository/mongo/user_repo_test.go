package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	newUser := func() *domain.User {
		return &domain.User{ID: domain.NewUserID(), Username: "alice1", Name: "Alice", PasswordHash: "hash"}
	}

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := newUser()
		require.NoError(mt, NewUserRepository(mt.DB).Create(context.Background(), user))
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: fitgate.users index: username_unique dup key: { username: "alice1" }`,
		}))

		err := NewUserRepository(mt.DB).Create(context.Background(), newUser())
		assert.ErrorIs(mt, err, domain.ErrUsernameTaken)
	})

	// The key value is part of the server message; only the index name counts.
	mt.Run("duplicate username mentioning email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: fitgate.users index: username_unique dup key: { username: "myemail" }`,
		}))

		err := NewUserRepository(mt.DB).Create(context.Background(), newUser())
		assert.ErrorIs(mt, err, domain.ErrUsernameTaken)
		assert.NotErrorIs(mt, err, domain.ErrEmailTaken)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		user := newUser()
		user.ID = "611f8cf2-4219-4c5e-9a4b-0d7c1f0e2a11"

		err := NewUserRepository(mt.DB).Create(context.Background(), user)
		assert.ErrorIs(mt, err, domain.ErrMalformedUserID)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: fitgate.users index: email_unique dup key: { email: "a@example.com" }`,
		}))

		err := NewUserRepository(mt.DB).Create(context.Background(), newUser())
		assert.ErrorIs(mt, err, domain.ErrEmailTaken)
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "fitgate.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice1"},
			{Key: "name", Value: "Alice"},
			{Key: "password_hash", Value: "hash"},
			{Key: "created_at", Value: created},
			{Key: "updated_at", Value: created},
		}))

		user, err := NewUserRepository(mt.DB).GetByUsername(context.Background(), "alice1")
		require.NoError(mt, err)
		assert.Equal(mt, domain.UserID(id.Hex()), user.ID)
		assert.Equal(mt, "Alice", user.Name)
		assert.Nil(mt, user.Email)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "fitgate.users", mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).GetByUsername(context.Background(), "ghost")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})
		assert.NoError(mt, NewUserRepository(mt.DB).UpdatePassword(context.Background(), domain.NewUserID(), "newhash"))
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		err := NewUserRepository(mt.DB).UpdatePassword(context.Background(), "not-an-object-id", "newhash")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("no such user", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})
		err := NewUserRepository(mt.DB).UpdatePassword(context.Background(), domain.NewUserID(), "newhash")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
