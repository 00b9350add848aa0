package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherrors "github.com/pilab-dev/kauth/errors"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenService() *TokenService {
	return NewTokenService("kauth-test", testSigningKey, 30*time.Minute, 14*24*time.Hour)
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := newTestTokenService()

	tokenValue, err := svc.IssueAccess("user-1", "user@example.com", "tester")
	require.NoError(t, err)
	require.NotEmpty(t, tokenValue)

	claims, err := svc.Verify(tokenValue)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "tester", claims.Nickname)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := newTestTokenService()

	tokenValue, err := svc.IssueRefresh("user-1")
	require.NoError(t, err)

	claims, err := svc.Verify(tokenValue)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	// Refresh tokens carry no profile claims.
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Nickname)
	assert.WithinDuration(t, time.Now().Add(14*24*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenService_VerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestTokenService()

	tokenValue, err := svc.IssueAccess("user-1", "", "")
	require.NoError(t, err)

	tampered := tokenValue[:len(tokenValue)-2] + "xx"
	_, err = svc.Verify(tampered)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherrors.ErrUnauthorized))
}

func TestTokenService_VerifyRejectsWrongKey(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService("kauth-test", []byte("another-key-entirely-0123456789a"), time.Minute, time.Hour)

	tokenValue, err := other.IssueAccess("user-1", "", "")
	require.NoError(t, err)

	_, err = svc.Verify(tokenValue)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherrors.ErrUnauthorized))
}

func TestTokenService_VerifyRejectsWrongIssuer(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService("someone-else", testSigningKey, time.Minute, time.Hour)

	tokenValue, err := other.IssueAccess("user-1", "", "")
	require.NoError(t, err)

	_, err = svc.Verify(tokenValue)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherrors.ErrUnauthorized))
}

func TestTokenService_VerifyRejectsExpiredToken(t *testing.T) {
	// TTL far enough in the past that the clock-skew leeway cannot save it.
	expired := NewTokenService("kauth-test", testSigningKey, -5*time.Minute, -5*time.Minute)

	tokenValue, err := expired.IssueAccess("user-1", "", "")
	require.NoError(t, err)

	svc := newTestTokenService()
	_, err = svc.Verify(tokenValue)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherrors.ErrUnauthorized))
}

func TestTokenService_VerifyToleratesSmallClockSkew(t *testing.T) {
	// Expired 30s ago is inside the 60s leeway and must still verify.
	skewed := NewTokenService("kauth-test", testSigningKey, -30*time.Second, time.Hour)

	tokenValue, err := skewed.IssueAccess("user-1", "", "")
	require.NoError(t, err)

	claims, err := newTestTokenService().Verify(tokenValue)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenService_VerifyRejectsMissingUserID(t *testing.T) {
	svc := newTestTokenService()

	tokenValue, err := svc.IssueAccess("", "user@example.com", "tester")
	require.NoError(t, err)

	_, err = svc.Verify(tokenValue)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherrors.ErrUnauthorized))
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestTokenService()

	for _, tokenValue := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(tokenValue)
		assert.Error(t, err, "token %q", tokenValue)
	}
}
