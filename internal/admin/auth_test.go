package admin

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/korssa/gong34/internal/common"
)

func newAuth(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthenticator("super-secret", string(hash), time.Hour)
}

func TestLoginAndVerify(t *testing.T) {
	a := newAuth(t)

	tok, id, err := a.Login([]byte("open-sesame"))
	require.NoError(t, err)
	assert.Equal(t, Subject, id.Subject)

	got, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Subject, got.Subject)
	assert.WithinDuration(t, id.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestLogin_WrongPassword(t *testing.T) {
	_, _, err := newAuth(t).Login([]byte("guess"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_NoHashConfigured(t *testing.T) {
	a := NewAuthenticator("k", "", time.Hour)
	_, _, err := a.Login([]byte(""))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerify_Expired(t *testing.T) {
	a := newAuth(t)
	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := a.IssueToken(Subject)
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Contains(t, err.Error(), "expired")
}

func TestVerify_ExpiredWithForeignSignatureIsNotExpired(t *testing.T) {
	forger := NewAuthenticator("different", "", time.Hour)
	forger.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := forger.IssueToken(Subject)
	require.NoError(t, err)

	_, err = newAuth(t).Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongSecretAndGarbage(t *testing.T) {
	tok, _, err := newAuth(t).IssueToken(Subject)
	require.NoError(t, err)

	other := NewAuthenticator("different", "", time.Hour)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)

	_, err = other.Verify("not.a.jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_RejectsForeignRoleAndAlg(t *testing.T) {
	a := newAuth(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "viewer",
	})
	s, err := foreign.SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = a.Verify(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             Subject,
	})
	s, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Verify(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, Authenticated(ctx))

	ctx = WithIdentity(ctx, Identity{Subject: Subject})
	assert.True(t, Authenticated(ctx))
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, Subject, id.Subject)
}
