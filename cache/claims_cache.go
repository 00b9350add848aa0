package cache

import (
	"context"
	"time"
)

// ClaimsEntry is a cached result of access-token verification. Entries are
// keyed by the token digest and expire together with the token itself.
type ClaimsEntry struct {
	UserID    string    `json:"user_id" redis:"user_id"`
	Email     string    `json:"email,omitempty" redis:"email"`
	Nickname  string    `json:"nickname,omitempty" redis:"nickname"`
	ExpiresAt time.Time `json:"expires_at" redis:"expires_at"`
}

// ClaimsCache caches verified access-token claims so repeat authenticated
// calls skip full JWT verification. It is a pure optimization: a miss always
// falls back to cryptographic verification, so implementations may drop
// entries at will.
type ClaimsCache interface {
	Set(ctx context.Context, token string, entry *ClaimsEntry) error
	Get(ctx context.Context, token string) (*ClaimsEntry, bool)
	Delete(ctx context.Context, token string) error
	Close() error
}
