package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pilab-dev/kauth/domain"
	autherrors "github.com/pilab-dev/kauth/errors"
	"github.com/pilab-dev/kauth/internal/kakao"
	"github.com/pilab-dev/kauth/internal/metrics"
)

// ProfileFetcher fetches a user profile from the external identity provider
// in exchange for that provider's access token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (*kakao.Profile, error)
}

// LoginResult is everything a successful login produces. Profile is only
// populated for newly created accounts so first-time clients can prefill
// their onboarding screens.
type LoginResult struct {
	Pair    TokenPair
	User    *domain.User
	Profile *kakao.Profile
	IsNew   bool
}

// AuthService orchestrates the login, refresh, reissue and logout use cases
// by composing identity resolution with the session state machine. It is the
// only component that talks to the external identity provider.
type AuthService struct {
	profiles ProfileFetcher
	accounts *AccountService
	tokens   *TokenService
	sessions *SessionService
}

// NewAuthService creates an AuthService.
func NewAuthService(
	profiles ProfileFetcher,
	accounts *AccountService,
	tokens *TokenService,
	sessions *SessionService,
) *AuthService {
	return &AuthService{
		profiles: profiles,
		accounts: accounts,
		tokens:   tokens,
		sessions: sessions,
	}
}

// Login exchanges an external provider access token for first-party session
// credentials. A profile without a stable external id is rejected as
// unauthorized.
func (s *AuthService) Login(ctx context.Context, externalToken string) (*LoginResult, error) {
	profile, err := s.profiles.FetchProfile(ctx, externalToken)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		log.Warn().Err(err).Msg("External profile fetch failed")
		return nil, autherrors.NewUnauthorized("invalid kakao token")
	}
	if profile.ID == "" {
		metrics.LoginFailureTotal.Inc()
		return nil, autherrors.NewUnauthorized("invalid kakao token")
	}

	user, isNew, err := s.accounts.Resolve(ctx, domain.ProviderKakao, profile.ID, profile)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email, user.Nickname)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		return nil, err
	}
	refreshToken, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		return nil, err
	}

	metrics.LoginSuccessTotal.Inc()
	metrics.TokensIssuedTotal.Inc()

	result := &LoginResult{
		Pair: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			AccessTTL:    s.tokens.AccessTTL(),
			RefreshTTL:   s.tokens.RefreshTTL(),
		},
		User:  user,
		IsNew: isNew,
	}
	if isNew {
		result.Profile = profile
	}
	return result, nil
}

// Refresh rotates the presented refresh token; failures from the session
// state machine surface unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// ReissueAccess mints a new access token against the presented refresh token
// without consuming it.
func (s *AuthService) ReissueAccess(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	return s.sessions.ReissueAccess(ctx, refreshToken)
}

// Logout revokes the user's latest refresh session. It always reports
// success, even when there was nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	metrics.LogoutsTotal.Inc()
	return s.sessions.RevokeLatest(ctx, userID)
}
