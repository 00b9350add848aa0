package domain

import "time"

// SocialProvider identifies an external identity provider. Kakao is the only
// active provider today; the type exists so new providers only add a constant.
type SocialProvider string

const (
	ProviderKakao SocialProvider = "KAKAO"
)

// SocialLink binds one external (provider, providerId) pair to exactly one
// local user. The pair is globally unique and the link is immutable after
// creation.
type SocialLink struct {
	ID         string         `bson:"_id,omitempty"`
	Provider   SocialProvider `bson:"provider"`
	ProviderID string         `bson:"provider_id"`
	UserID     string         `bson:"user_id"`
	CreatedAt  time.Time      `bson:"created_at"`
}
