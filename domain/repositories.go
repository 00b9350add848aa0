package domain

import (
	"context"
	"errors"
)

// Sentinel errors shared by all repository implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateLink is returned when a (provider, providerId) pair is
	// already bound to a user. Callers racing on first login catch this and
	// load the winner's record instead of failing.
	ErrDuplicateLink = errors.New("social link already exists")
	// ErrSessionNotUpdatable is returned by conditional session updates when
	// the record is no longer in the required state (e.g. a concurrent
	// rotation already marked it rotated).
	ErrSessionNotUpdatable = errors.New("refresh session not in updatable state")
)

// UserRepository persists internal user records.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// SocialLinkRepository persists bindings between external identities and
// local users. CreateLink must enforce uniqueness of (provider, providerId)
// and return ErrDuplicateLink on conflict.
type SocialLinkRepository interface {
	CreateLink(ctx context.Context, link *SocialLink) error
	FindLink(ctx context.Context, provider SocialProvider, providerID string) (*SocialLink, error)
}

// RefreshSessionRepository persists refresh-token records keyed by the owning
// user and the token digest.
type RefreshSessionRepository interface {
	CreateSession(ctx context.Context, session *RefreshSession) error
	FindByUserAndHash(ctx context.Context, userID, tokenHash string) (*RefreshSession, error)
	// FindLatestByUser returns the most recently issued session for the user,
	// ordered by issued_at descending with _id descending as the tie-break.
	FindLatestByUser(ctx context.Context, userID string) (*RefreshSession, error)
	// MarkRotated sets rotated_at on the session identified by id only if
	// rotated_at is currently unset. Returns ErrSessionNotUpdatable when the
	// condition fails, which is how a lost rotation race surfaces.
	MarkRotated(ctx context.Context, id string) error
	// MarkRevoked sets revoked_at on the session identified by id only if
	// revoked_at is currently unset. Returns ErrSessionNotUpdatable when the
	// session is already revoked.
	MarkRevoked(ctx context.Context, id string) error
	// RevokeAllActive revokes every non-revoked session of the user and
	// returns how many records were updated.
	RevokeAllActive(ctx context.Context, userID string) (int64, error)
}
