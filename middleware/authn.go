// Package middleware provides Echo middleware for the authentication service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pilab-dev/kauth/cache"
	"github.com/pilab-dev/kauth/errors"
	"github.com/pilab-dev/kauth/services"
)

// UserIDContextKey is the echo context key under which the authenticated
// user's id is stored.
const UserIDContextKey = "auth.user_id"

// Authenticator validates Bearer access tokens on incoming requests.
type Authenticator struct {
	tokens *services.TokenService
	claims cache.ClaimsCache
}

// NewAuthenticator creates an Authenticator. The claims cache short-circuits
// repeat verifications of the same access token; pass nil to always verify.
func NewAuthenticator(tokens *services.TokenService, claims cache.ClaimsCache) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		claims: claims,
	}
}

// RequireAccessToken is Echo middleware that rejects requests without a valid
// Bearer access token and stores the verified user id on the context.
func (a *Authenticator) RequireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.JSON(http.StatusUnauthorized, errors.NewUnauthorized("invalid access token"))
		}
		tokenValue := parts[1]

		ctx := c.Request().Context()

		if a.claims != nil {
			if entry, ok := a.claims.Get(ctx, tokenValue); ok {
				c.Set(UserIDContextKey, entry.UserID)
				return next(c)
			}
		}

		verified, err := a.tokens.Verify(tokenValue)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errors.NewUnauthorized("invalid access token"))
		}

		if a.claims != nil {
			_ = a.claims.Set(ctx, tokenValue, &cache.ClaimsEntry{
				UserID:    verified.UserID,
				Email:     verified.Email,
				Nickname:  verified.Nickname,
				ExpiresAt: verified.ExpiresAt,
			})
		}

		c.Set(UserIDContextKey, verified.UserID)
		return next(c)
	}
}

// UserIDFromContext returns the authenticated user id stored by
// RequireAccessToken.
func UserIDFromContext(c echo.Context) (string, bool) {
	userID, ok := c.Get(UserIDContextKey).(string)
	return userID, ok && userID != ""
}
