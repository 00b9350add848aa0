package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilab-dev/kauth/cache"
	"github.com/pilab-dev/kauth/services"
)

func newAuthnFixture(t *testing.T, claims cache.ClaimsCache) (*services.TokenService, echo.HandlerFunc) {
	t.Helper()
	tokens := services.NewTokenService("kauth-test", []byte("0123456789abcdef0123456789abcdef"), 30*time.Minute, 24*time.Hour)
	authn := NewAuthenticator(tokens, claims)
	handler := authn.RequireAccessToken(func(c echo.Context) error {
		userID, _ := UserIDFromContext(c)
		return c.String(http.StatusOK, userID)
	})
	return tokens, handler
}

func invoke(handler echo.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func TestRequireAccessToken_ValidBearer(t *testing.T) {
	tokens, handler := newAuthnFixture(t, nil)

	tokenValue, err := tokens.IssueAccess("user-1", "user@example.com", "tester")
	require.NoError(t, err)

	rec := invoke(handler, "Bearer "+tokenValue)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAccessToken_RejectsBadHeaders(t *testing.T) {
	tokens, handler := newAuthnFixture(t, nil)

	tokenValue, err := tokens.IssueAccess("user-1", "", "")
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"no scheme":    tokenValue,
		"wrong scheme": "Basic " + tokenValue,
		"not a jwt":    "Bearer garbage",
	} {
		t.Run(name, func(t *testing.T) {
			rec := invoke(handler, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAccessToken_CachesVerifiedClaims(t *testing.T) {
	claims := cache.NewMemoryClaimsCache(time.Minute)
	defer claims.Close()
	tokens, handler := newAuthnFixture(t, claims)

	tokenValue, err := tokens.IssueAccess("user-1", "user@example.com", "tester")
	require.NoError(t, err)

	rec := invoke(handler, "Bearer "+tokenValue)
	require.Equal(t, http.StatusOK, rec.Code)

	entry, ok := claims.Get(httptest.NewRequest(http.MethodGet, "/", nil).Context(), tokenValue)
	require.True(t, ok)
	assert.Equal(t, "user-1", entry.UserID)

	// Second request is served from the cache.
	rec = invoke(handler, "Bearer "+tokenValue)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}
