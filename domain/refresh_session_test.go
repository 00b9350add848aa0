package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshSessionUsable(t *testing.T) {
	now := time.Now()
	base := RefreshSession{
		UserID:    "user-1",
		TokenHash: "digest",
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
	}

	assert.True(t, base.Usable(now))
	assert.False(t, base.Expired(now))

	rotated := base
	rotated.RotatedAt = &now
	assert.False(t, rotated.Usable(now))

	revoked := base
	revoked.RevokedAt = &now
	assert.False(t, revoked.Usable(now))

	expired := base
	expired.ExpiresAt = now.Add(-time.Minute)
	assert.True(t, expired.Expired(now))
	assert.False(t, expired.Usable(now))
}
