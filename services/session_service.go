package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pilab-dev/kauth/cache"
	"github.com/pilab-dev/kauth/domain"
	autherrors "github.com/pilab-dev/kauth/errors"
	"github.com/pilab-dev/kauth/internal/metrics"
)

// TokenPair is the result of a login or a successful rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SessionServiceOptions tunes the refresh-session state machine.
type SessionServiceOptions struct {
	// RevokeOnReuse treats a rotated refresh token presented again as a
	// compromise signal and revokes every remaining active session of that
	// user. Off by default.
	RevokeOnReuse bool
}

// SessionService is the refresh-session state machine. A session moves from
// active to rotated, revoked or expired; each transition is a one-way
// trapdoor and a session is exchangeable only while none of the three hold.
//
// The service keeps no mutable in-process state: every decision is made
// against the store, and the rotation transition itself is a conditional
// update there, so concurrent rotations of the same token resolve to exactly
// one winner.
type SessionService struct {
	tokens   *TokenService
	sessions domain.RefreshSessionRepository
	users    domain.UserRepository
	opts     SessionServiceOptions
}

// NewSessionService creates a SessionService.
func NewSessionService(
	tokens *TokenService,
	sessions domain.RefreshSessionRepository,
	users domain.UserRepository,
	opts SessionServiceOptions,
) *SessionService {
	return &SessionService{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		opts:     opts,
	}
}

// Issue mints a fresh refresh token for the user and stores its hashed
// session record. The returned string is the only time the raw token is ever
// revealed.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	refreshToken, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	session := &domain.RefreshSession{
		UserID:    userID,
		TokenHash: cache.HashToken(refreshToken),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", autherrors.NewServerError("failed to store refresh session")
	}

	metrics.TokensIssuedTotal.Inc()
	return refreshToken, nil
}

// Rotate exchanges a refresh token for a brand-new access+refresh pair and
// permanently retires the presented token. Presenting an absent, rotated,
// revoked or expired token fails unauthorized; a rotated one is the reuse-
// detection boundary.
func (s *SessionService) Rotate(ctx context.Context, presentedToken string) (*TokenPair, error) {
	user, session, err := s.lookup(ctx, presentedToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if session.RotatedAt != nil {
		s.handleReuse(ctx, user.ID)
		return nil, autherrors.NewUnauthorized("refresh already rotated")
	}
	if session.RevokedAt != nil {
		return nil, autherrors.NewUnauthorized("refresh revoked")
	}
	if session.Expired(now) {
		return nil, autherrors.NewUnauthorized("refresh expired")
	}

	// The conditional update is the serialization point: of N concurrent
	// rotations of one token, exactly one reaches this line first and wins.
	if err := s.sessions.MarkRotated(ctx, session.ID); err != nil {
		if errors.Is(err, domain.ErrSessionNotUpdatable) {
			return nil, autherrors.NewUnauthorized("refresh already rotated")
		}
		return nil, autherrors.NewServerError("failed to rotate refresh session")
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email, user.Nickname)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.TokensIssuedTotal.Inc()
	metrics.RotationsTotal.Inc()

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		AccessTTL:    s.tokens.AccessTTL(),
		RefreshTTL:   s.tokens.RefreshTTL(),
	}, nil
}

// ReissueAccess mints a new access token against a still-valid refresh token
// without consuming it. Only revocation and expiry are checked; rotatedAt is
// neither read nor written, so a client can refresh its access token
// repeatedly on the same refresh token.
func (s *SessionService) ReissueAccess(ctx context.Context, presentedToken string) (string, time.Duration, error) {
	user, session, err := s.lookup(ctx, presentedToken)
	if err != nil {
		return "", 0, err
	}

	if session.RevokedAt != nil {
		return "", 0, autherrors.NewUnauthorized("refresh revoked")
	}
	if session.Expired(time.Now()) {
		return "", 0, autherrors.NewUnauthorized("refresh expired")
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email, user.Nickname)
	if err != nil {
		return "", 0, err
	}

	metrics.TokensIssuedTotal.Inc()
	return accessToken, s.tokens.AccessTTL(), nil
}

// RevokeLatest revokes the user's most recently issued refresh session. A
// user with no sessions, or whose latest session is already revoked, is a
// no-op, not an error: logout is idempotent from the caller's perspective.
func (s *SessionService) RevokeLatest(ctx context.Context, userID string) error {
	session, err := s.sessions.FindLatestByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return autherrors.NewServerError("failed to find refresh session")
	}

	if err := s.sessions.MarkRevoked(ctx, session.ID); err != nil {
		if errors.Is(err, domain.ErrSessionNotUpdatable) {
			return nil
		}
		return autherrors.NewServerError("failed to revoke refresh session")
	}
	return nil
}

// lookup verifies the presented token, resolves its owner and loads the
// matching session record. All misses collapse into unauthorized; store
// faults stay server errors.
func (s *SessionService) lookup(ctx context.Context, presentedToken string) (*domain.User, *domain.RefreshSession, error) {
	if presentedToken == "" {
		return nil, nil, autherrors.NewUnauthorized("invalid refresh token")
	}

	claims, err := s.tokens.Verify(presentedToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, autherrors.NewUnauthorized("user not found")
	}
	if err != nil {
		return nil, nil, autherrors.NewServerError("failed to load user")
	}

	session, err := s.sessions.FindByUserAndHash(ctx, user.ID, cache.HashToken(presentedToken))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, autherrors.NewUnauthorized("refresh token not found")
	}
	if err != nil {
		return nil, nil, autherrors.NewServerError("failed to load refresh session")
	}

	return user, session, nil
}

func (s *SessionService) handleReuse(ctx context.Context, userID string) {
	metrics.ReuseDetectedTotal.Inc()
	log.Warn().Str("userID", userID).Msg("Rotated refresh token presented again")

	if !s.opts.RevokeOnReuse {
		return
	}
	revoked, err := s.sessions.RevokeAllActive(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Failed to revoke sessions after reuse detection")
		return
	}
	log.Warn().Str("userID", userID).Int64("revoked", revoked).Msg("Revoked all active sessions after reuse detection")
}
