package domain

import "time"

// RefreshSession is the server-side record of an issued refresh token. Only
// the SHA-256 digest of the token is stored, never the raw value: a storage
// leak alone must not be enough to hijack a session.
//
// A session starts active and becomes rotated, revoked or expired at most once
// each. The three states are independent one-way trapdoors; the record stays
// around for audit once it is inert.
type RefreshSession struct {
	ID        string     `bson:"_id,omitempty"`
	UserID    string     `bson:"user_id"`
	TokenHash string     `bson:"token_hash"`
	IssuedAt  time.Time  `bson:"issued_at"`
	ExpiresAt time.Time  `bson:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
	RotatedAt *time.Time `bson:"rotated_at,omitempty"`
}

// Expired reports whether the session's lifetime has passed at the given
// instant.
func (s *RefreshSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Usable reports whether the session can still be exchanged: none of
// revoked, rotated or expired may hold.
func (s *RefreshSession) Usable(now time.Time) bool {
	return s.RevokedAt == nil && s.RotatedAt == nil && !s.Expired(now)
}
