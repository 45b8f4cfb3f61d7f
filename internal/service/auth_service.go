package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProfileChecker answers whether a user's fitness profile exists and is complete.
type ProfileChecker interface {
	ProfileStatus(ctx context.Context, userID domain.UserID) (domain.ProfileStatus, error)
}

// Mailer delivers plain-text notifications.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	hasher      PasswordHasher
	tokens      *TokenIssuer
	profiles    ProfileChecker
	mailer      Mailer
	cfg         *config.Config
	now         func() time.Time
}

func NewAuthService(repos *repository.Repositories, profiles ProfileChecker, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    repos.User,
		sessionRepo: repos.Session,
		resetRepo:   repos.PasswordReset,
		hasher:      NewBcryptHasher(cfg.BcryptCost),
		tokens:      NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL()),
		profiles:    profiles,
		mailer:      mailer,
		cfg:         cfg,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

type LoginInput struct {
	Username   string
	Password   string
	ClientInfo map[string]interface{}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Profile   domain.ProfileStatus
}

// ValidateResult is the outcome of a session check. Valid is false for any
// missing, forged, expired or revoked token.
type ValidateResult struct {
	Valid   bool
	Profile domain.ProfileStatus
}

// Principal identifies the caller behind a verified token.
type Principal struct {
	UserID    domain.UserID
	SessionID uuid.UUID
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if username == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	// Fast path for the common duplicate; the unique index is what actually
	// guarantees uniqueness under concurrent registrations.
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.StoreError("lookup username", err)
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           domain.NewUserID(),
		Username:     username,
		Name:         name,
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, domain.StoreError("create user", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := domain.NormalizeUsername(input.Username)
	if username == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.StoreError("lookup user", err)
	}

	if !s.hasher.Check(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	// Ask the fitness service first so a degraded dependency leaves no
	// orphaned session behind.
	profile, err := s.profiles.ProfileStatus(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.UserSession{
		ID:         uuid.New(),
		UserID:     user.ID,
		ClientInfo: datatypes.JSONMap(input.ClientInfo),
		ExpiresAt:  now.Add(s.tokens.TTL()),
		CreatedAt:  now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, domain.StoreError("create session", err)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, session.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Profile:   profile,
	}, nil
}

// Authenticate verifies a bearer token and its backing session.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, domain.ErrMissingToken
	}

	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, domain.StoreError("lookup session", err)
	}
	if session.UserID != userID || session.Expired(s.now()) {
		return nil, domain.ErrInvalidToken
	}

	return &Principal{UserID: userID, SessionID: sessionID}, nil
}

// Validate is the client's "am I logged in" check. It has no side effects.
func (s *AuthService) Validate(ctx context.Context, tokenString string) (*ValidateResult, error) {
	principal, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		if domain.KindOf(err) == domain.KindAuth {
			return &ValidateResult{Valid: false}, nil
		}
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, principal.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ValidateResult{Valid: false}, nil
		}
		return nil, domain.StoreError("lookup user", err)
	}

	profile, err := s.profiles.ProfileStatus(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	return &ValidateResult{Valid: true, Profile: profile}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.StoreError("lookup user", err)
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return domain.StoreError("delete session", err)
	}
	return nil
}

// ForgotPassword mails a reset link when the email belongs to an account.
// Unknown addresses succeed silently so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	normalized := domain.NormalizeEmail(email)
	if normalized == nil {
		return domain.ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, *normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return domain.StoreError("lookup email", err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return domain.StoreError("clear password resets", err)
	}
	now := s.now()
	reset := &domain.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: now.Add(s.cfg.PasswordResetTTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return domain.StoreError("create password reset", err)
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password/" + token
	body := fmt.Sprintf("Hi %s,\n\nOpen the link below to reset your password. It expires in %s.\n\n%s\n",
		user.Name, s.cfg.PasswordResetTTL, link)
	if err := s.mailer.Send(ctx, *user.Email, "Password Reset Request", body); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailUnavailable, err)
	}
	return nil
}

// ResetPassword replaces the password for the account a reset token was
// issued to and revokes every existing session of that account.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrResetTokenInvalid
	}
	if newPassword == "" {
		return domain.ErrMissingFields
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	reset, err := s.resetRepo.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return domain.StoreError("lookup password reset", err)
	}
	if !s.now().Before(reset.ExpiresAt) {
		return domain.ErrResetTokenInvalid
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, reset.UserID, hashedPassword); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return domain.StoreError("update password", err)
	}
	if err := s.resetRepo.DeleteByUserID(ctx, reset.UserID); err != nil {
		return domain.StoreError("clear password resets", err)
	}
	if err := s.sessionRepo.DeleteByUserID(ctx, reset.UserID); err != nil {
		return domain.StoreError("revoke sessions", err)
	}
	return nil
}

// PruneExpiredSessions removes sessions whose tokens can no longer verify.
func (s *AuthService) PruneExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
