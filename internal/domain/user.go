package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"
)

const (
	UsernameMinLength = 4
	UsernameMaxLength = 15
	PasswordMinLength = 6
	PasswordMaxLength = 25
)

// UserID is a 24-character hex ObjectId. The fitness service rejects any
// other user id format.
type UserID string

var ErrMalformedUserID = errors.New("malformed user id")

func NewUserID() UserID {
	return UserID(primitive.NewObjectID().Hex())
}

// ParseUserID accepts only the canonical lowercase hex form.
func ParseUserID(s string) (UserID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil || oid.Hex() != s {
		return "", ErrMalformedUserID
	}
	return UserID(s), nil
}

func (id UserID) String() string {
	return string(id)
}

type User struct {
	ID           UserID    `json:"id" gorm:"type:varchar(24);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:15;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Email        *string   `json:"email,omitempty" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSession backs a single issued token. Deleting the row revokes the token.
type UserSession struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     UserID            `json:"userId" gorm:"type:varchar(24);index;not null"`
	ClientInfo datatypes.JSONMap `json:"clientInfo"`
	ExpiresAt  time.Time         `json:"expiresAt" gorm:"not null"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type PasswordReset struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    UserID    `gorm:"type:varchar(24);index;not null"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Conversation records which user a chatbot conversation id was issued to.
type Conversation struct {
	ID        string    `gorm:"size:64;primaryKey"`
	UserID    UserID    `gorm:"type:varchar(24);index;not null"`
	CreatedAt time.Time
}

// ProfileStatus mirrors the fitness service's profile completion check.
type ProfileStatus struct {
	Created   bool `json:"profile_created"`
	Completed bool `json:"profile_completed"`
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail returns nil for blank input.
func NormalizeEmail(email string) *string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &email
}

func ValidateUsername(username string) error {
	if n := len(username); n < UsernameMinLength || n > UsernameMaxLength {
		return ErrUsernameLength
	}
	return nil
}

func ValidatePassword(password string) error {
	if n := len(password); n < PasswordMinLength || n > PasswordMaxLength {
		return ErrPasswordLength
	}
	return nil
}
