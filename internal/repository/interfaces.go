package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned by every backend when a lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// UserRepository persists credentials. Create returns domain.ErrUsernameTaken
// or domain.ErrEmailTaken when the store's unique index rejects the insert.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID domain.UserID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
	DeleteByUserID(ctx context.Context, userID domain.UserID) error
}

// ConversationRepository remembers which user owns each chatbot
// conversation. Record ignores ids that are already owned.
type ConversationRepository interface {
	Record(ctx context.Context, conversation *domain.Conversation) error
	Owns(ctx context.Context, userID domain.UserID, conversationID string) (bool, error)
}

type Repositories struct {
	User          UserRepository
	Session       SessionRepository
	PasswordReset PasswordResetRepository
	Conversation  ConversationRepository

	// Close releases the underlying connection pool.
	Close func(ctx context.Context) error
}
