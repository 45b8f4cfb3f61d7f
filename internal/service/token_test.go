package service

import (
	"testing"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	userID, sessionID := domain.NewUserID(), uuid.New()

	token, expiresAt, err := issuer.Issue(userID, sessionID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	gotUser, err := claims.UserID()
	require.NoError(t, err)
	gotSession, err := claims.SessionID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, sessionID, gotSession)
}

func TestClaims_UserIDMustBeObjectID(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		wantErr bool
	}{
		{name: "object id", subject: "64b7f0c2a1d3e4f5a6b7c8d9"},
		{name: "uuid", subject: uuid.NewString(), wantErr: true},
		{name: "uppercase hex", subject: "64B7F0C2A1D3E4F5A6B7C8D9", wantErr: true},
		{name: "empty", subject: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: tt.subject}}
			got, err := claims.UserID()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedUserID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.UserID(tt.subject), got)
		})
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	valid, _, err := issuer.Issue(domain.NewUserID(), uuid.New())
	require.NoError(t, err)

	otherKey, _, err := NewTokenIssuer("other-secret", time.Hour).Issue(domain.NewUserID(), uuid.New())
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   domain.NewUserID().String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: domain.NewUserID().String(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "a.b.c"},
		{name: "wrong key", token: otherKey},
		{name: "alg none", token: noneToken},
		{name: "missing expiry", token: noExpiry},
		{name: "truncated signature", token: valid[:len(valid)-2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	now := time.Now()
	issuer.now = func() time.Time { return now }

	token, _, err := issuer.Issue(domain.NewUserID(), uuid.New())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash carries its own salt")
	assert.True(t, hasher.Check("secret1", first))
	assert.True(t, hasher.Check("secret1", second))
	assert.False(t, hasher.Check("secret2", first))
	assert.False(t, hasher.Check("secret1", "not-a-hash"))
}
