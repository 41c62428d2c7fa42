package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:   "test-secret",
		SessionExp:  time.Hour,
		TokenIssuer: "academy.test",
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTestJWT()

	token, expiry, err := svc.GenerateSessionToken("admin")
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWT()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateSessionToken("admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newTestJWT().GenerateSessionToken("admin")
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", SessionExp: time.Hour, TokenIssuer: "academy.test"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := newTestJWT().ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = newTestJWT().ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = ExtractBearerToken("  ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(string(hash), "s3cret"))
	assert.False(t, CheckPassword(string(hash), "wrong"))
}
