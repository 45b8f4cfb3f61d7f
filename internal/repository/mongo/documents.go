package mongo

import (
	"fmt"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users are keyed by ObjectId, the id format the fitness service expects.
// Sessions and resets keep uuid string ids and reference users by ObjectId.

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Name         string             `bson:"name"`
	Email        *string            `bson:"email,omitempty"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func objectID(id domain.UserID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("user id %q: %w", id, domain.ErrMalformedUserID)
	}
	return oid, nil
}

func toUserDocument(u *domain.User) (*userDocument, error) {
	if u.ID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	oid, err := objectID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:           oid,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func (d *userDocument) toDomain() (*domain.User, error) {
	if d.ID.IsZero() {
		return nil, fmt.Errorf("decode user: missing _id")
	}
	return &domain.User{
		ID:           domain.UserID(d.ID.Hex()),
		Username:     d.Username,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type sessionDocument struct {
	ID         string                 `bson:"_id"`
	UserID     primitive.ObjectID     `bson:"user_id"`
	ClientInfo map[string]interface{} `bson:"client_info,omitempty"`
	ExpiresAt  time.Time              `bson:"expires_at"`
	CreatedAt  time.Time              `bson:"created_at"`
}

func toSessionDocument(s *domain.UserSession) (*sessionDocument, error) {
	userID, err := objectID(s.UserID)
	if err != nil {
		return nil, err
	}
	return &sessionDocument{
		ID:         s.ID.String(),
		UserID:     userID,
		ClientInfo: s.ClientInfo,
		ExpiresAt:  s.ExpiresAt,
		CreatedAt:  s.CreatedAt,
	}, nil
}

func (d *sessionDocument) toDomain() (*domain.UserSession, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode session id %q: %w", d.ID, err)
	}
	return &domain.UserSession{
		ID:         id,
		UserID:     domain.UserID(d.UserID.Hex()),
		ClientInfo: d.ClientInfo,
		ExpiresAt:  d.ExpiresAt,
		CreatedAt:  d.CreatedAt,
	}, nil
}

type passwordResetDocument struct {
	ID        string             `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	TokenHash string             `bson:"token_hash"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *passwordResetDocument) toDomain() (*domain.PasswordReset, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode reset id %q: %w", d.ID, err)
	}
	return &domain.PasswordReset{
		ID:        id,
		UserID:    domain.UserID(d.UserID.Hex()),
		TokenHash: d.TokenHash,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}, nil
}
