package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/pilab-dev/kauth/domain"
	autherrors "github.com/pilab-dev/kauth/errors"
	"github.com/pilab-dev/kauth/internal/kakao"
	"github.com/pilab-dev/kauth/internal/metrics"
)

// AccountService resolves an external identity to a local user, creating the
// user on first sight.
type AccountService struct {
	users domain.UserRepository
	links domain.SocialLinkRepository
}

// NewAccountService creates an AccountService.
func NewAccountService(users domain.UserRepository, links domain.SocialLinkRepository) *AccountService {
	return &AccountService{
		users: users,
		links: links,
	}
}

// Resolve maps (provider, providerID) to a local user. On first sight it
// creates a User from the supplied profile plus the SocialLink binding it;
// repeat logins load the linked user and ignore the fresh profile fields (no
// profile sync on every login). The returned flag reports whether the account
// was newly created.
//
// Two concurrent first-logins for the same external identity are resolved by
// the store's unique (provider, provider_id) index: the insert loser reloads
// the winner's link instead of surfacing an error.
func (s *AccountService) Resolve(ctx context.Context, provider domain.SocialProvider, providerID string, profile *kakao.Profile) (*domain.User, bool, error) {
	link, err := s.links.FindLink(ctx, provider, providerID)
	switch {
	case err == nil:
		user, err := s.users.GetUserByID(ctx, link.UserID)
		if err != nil {
			return nil, false, autherrors.NewServerError("failed to load linked user")
		}
		return user, false, nil
	case errors.Is(err, domain.ErrNotFound):
		// First login for this external identity.
	default:
		return nil, false, autherrors.NewServerError("failed to look up social link")
	}

	user := &domain.User{
		Email:             profile.Email,
		Nickname:          profile.Nickname,
		ProfileImageURL:   profile.ProfileImageURL,
		ThumbnailImageURL: profile.ThumbnailImageURL,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, false, autherrors.NewServerError("failed to create user")
	}

	err = s.links.CreateLink(ctx, &domain.SocialLink{
		Provider:   provider,
		ProviderID: providerID,
		UserID:     user.ID,
	})
	if errors.Is(err, domain.ErrDuplicateLink) {
		// Lost the create race; the winner's user is the real one. The user
		// record inserted above stays unlinked and unobservable.
		log.Debug().
			Str("provider", string(provider)).
			Str("providerID", providerID).
			Msg("Social link insert lost a race, loading winner")
		return s.loadExisting(ctx, provider, providerID)
	}
	if err != nil {
		return nil, false, autherrors.NewServerError("failed to create social link")
	}

	metrics.UsersRegisteredTotal.Inc()
	return user, true, nil
}

func (s *AccountService) loadExisting(ctx context.Context, provider domain.SocialProvider, providerID string) (*domain.User, bool, error) {
	link, err := s.links.FindLink(ctx, provider, providerID)
	if err != nil {
		return nil, false, autherrors.NewServerError("failed to load social link")
	}
	user, err := s.users.GetUserByID(ctx, link.UserID)
	if err != nil {
		return nil, false, autherrors.NewServerError("failed to load linked user")
	}
	return user, false, nil
}
