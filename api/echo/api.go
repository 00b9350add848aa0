// Package echo exposes the authentication service over HTTP using the Echo
// framework.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/pilab-dev/kauth/api"
	autherrors "github.com/pilab-dev/kauth/errors"
	"github.com/pilab-dev/kauth/middleware"
	"github.com/pilab-dev/kauth/services"
)

// AuthAPI holds the HTTP handlers for the login, refresh, reissue and logout
// operations.
type AuthAPI struct {
	service       *services.AuthService
	authenticator *middleware.Authenticator
}

// NewAuthAPI initializes the auth API.
func NewAuthAPI(service *services.AuthService, authenticator *middleware.Authenticator) *AuthAPI {
	return &AuthAPI{
		service:       service,
		authenticator: authenticator,
	}
}

// RegisterRoutes registers the auth routes.
func (a *AuthAPI) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/kakao/login", a.LoginHandler)
	e.POST("/auth/token/refresh", a.RefreshHandler)
	e.POST("/auth/token/access", a.ReissueAccessHandler)
	e.POST("/auth/logout", a.LogoutHandler, a.authenticator.RequireAccessToken)
}

// LoginHandler exchanges a Kakao access token for first-party credentials.
// The response carries both tokens, their TTLs and the user's public profile;
// the raw Kakao profile block is present only when this login created the
// account.
func (a *AuthAPI) LoginHandler(c echo.Context) error {
	var req api.KakaoLoginRequest
	if err := c.Bind(&req); err != nil || req.KakaoAccessToken == "" {
		return c.JSON(http.StatusUnauthorized, autherrors.NewUnauthorized("invalid kakao token"))
	}

	result, err := a.service.Login(c.Request().Context(), req.KakaoAccessToken)
	if err != nil {
		return writeAuthError(c, err)
	}

	resp := api.LoginResponse{
		AccessToken:   result.Pair.AccessToken,
		RefreshToken:  result.Pair.RefreshToken,
		AccessTTLSec:  int64(result.Pair.AccessTTL.Seconds()),
		RefreshTTLSec: int64(result.Pair.RefreshTTL.Seconds()),
		User: api.UserResponse{
			ID:              result.User.ID,
			Nickname:        result.User.Nickname,
			ProfileImageURL: result.User.ProfileImageURL,
		},
		IsNew: result.IsNew,
	}
	if result.Profile != nil {
		resp.Kakao = &api.KakaoProfileResponse{
			ID:                result.Profile.ID,
			Nickname:          result.Profile.Nickname,
			ProfileImageURL:   result.Profile.ProfileImageURL,
			ThumbnailImageURL: result.Profile.ThumbnailImageURL,
		}
	}

	log.Info().
		Str("user_id", result.User.ID).
		Bool("is_new", result.IsNew).
		Msg("Login succeeded")

	return c.JSON(http.StatusOK, resp)
}

// RefreshHandler rotates a refresh token: the presented token is retired and
// a new access+refresh pair is returned.
func (a *AuthAPI) RefreshHandler(c echo.Context) error {
	var req api.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusUnauthorized, autherrors.NewUnauthorized("invalid refresh token"))
	}

	pair, err := a.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, api.RefreshResponse{
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		AccessTTLSec:  int64(pair.AccessTTL.Seconds()),
		RefreshTTLSec: int64(pair.RefreshTTL.Seconds()),
	})
}

// ReissueAccessHandler mints a new access token without consuming the
// presented refresh token.
func (a *AuthAPI) ReissueAccessHandler(c echo.Context) error {
	var req api.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusUnauthorized, autherrors.NewUnauthorized("invalid refresh token"))
	}

	accessToken, ttl, err := a.service.ReissueAccess(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, api.AccessResponse{
		AccessToken:  accessToken,
		AccessTTLSec: int64(ttl.Seconds()),
	})
}

// LogoutHandler revokes the caller's latest refresh session. The user is
// identified by the Bearer access token; logout is idempotent and reports ok
// even when nothing was revoked.
func (a *AuthAPI) LogoutHandler(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, autherrors.NewUnauthorized("invalid access token"))
	}

	if err := a.service.Logout(c.Request().Context(), userID); err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, api.StatusResponse{Status: "ok"})
}

// writeAuthError maps service errors onto the wire: unauthorized stays 401
// with its coarse code, everything else is a 500 without detail.
func writeAuthError(c echo.Context, err error) error {
	if errors.Is(err, autherrors.ErrUnauthorized) {
		var authErr *autherrors.AuthError
		if errors.As(err, &authErr) {
			return c.JSON(http.StatusUnauthorized, authErr)
		}
		return c.JSON(http.StatusUnauthorized, autherrors.NewUnauthorized(""))
	}

	log.Error().Err(err).Msg("Request failed with server error")
	return c.JSON(http.StatusInternalServerError, autherrors.NewServerError("internal error"))
}
