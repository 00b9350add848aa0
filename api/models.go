// Package api holds the transport-neutral request and response shapes of the
// authentication service.
package api

// KakaoLoginRequest carries the external provider access token obtained by
// the client.
type KakaoLoginRequest struct {
	KakaoAccessToken string `json:"kakaoAccessToken"`
}

// RefreshRequest carries a refresh token for rotation or access reissue.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the public view of a user returned on login.
type UserResponse struct {
	ID              string `json:"id"`
	Nickname        string `json:"nickname,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// KakaoProfileResponse echoes the raw external profile fields. Included in a
// login response only when the account was created by that login.
type KakaoProfileResponse struct {
	ID                string `json:"id"`
	Nickname          string `json:"nickname,omitempty"`
	ProfileImageURL   string `json:"profileImageUrl,omitempty"`
	ThumbnailImageURL string `json:"thumbnailImageUrl,omitempty"`
}

// LoginResponse is the full login payload.
type LoginResponse struct {
	AccessToken   string                `json:"accessToken"`
	RefreshToken  string                `json:"refreshToken"`
	AccessTTLSec  int64                 `json:"accessTtlSec"`
	RefreshTTLSec int64                 `json:"refreshTtlSec"`
	User          UserResponse          `json:"user"`
	Kakao         *KakaoProfileResponse `json:"kakao,omitempty"`
	IsNew         bool                  `json:"isNew"`
}

// RefreshResponse is the payload of a successful rotation.
type RefreshResponse struct {
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	AccessTTLSec  int64  `json:"accessTtlSec"`
	RefreshTTLSec int64  `json:"refreshTtlSec"`
}

// AccessResponse is the payload of an access-only reissue.
type AccessResponse struct {
	AccessToken  string `json:"accessToken"`
	AccessTTLSec int64  `json:"accessTtlSec"`
}

// StatusResponse is a minimal acknowledgement payload.
type StatusResponse struct {
	Status string `json:"status"`
}
