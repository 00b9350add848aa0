package domain

import "time"

// User represents an internal identity record. Users are created on the first
// successful login from a given external identity and are never deleted by
// this service.
type User struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	Email             string    `bson:"email,omitempty" json:"email,omitempty"`
	Nickname          string    `bson:"nickname,omitempty" json:"nickname,omitempty"`
	ProfileImageURL   string    `bson:"profile_image_url,omitempty" json:"profileImageUrl,omitempty"`
	ThumbnailImageURL string    `bson:"thumbnail_image_url,omitempty" json:"thumbnailImageUrl,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt"`
}
