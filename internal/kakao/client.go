// Package kakao fetches user profiles from the Kakao userinfo API. It is the
// only outbound network call the service makes.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultUserinfoEndpoint is Kakao's user info API endpoint.
const DefaultUserinfoEndpoint = "https://kapi.kakao.com/v2/user/me"

const requestTimeout = 5 * time.Second

// Profile is the subset of the Kakao userinfo response this service needs.
// Every field except ID may be empty.
type Profile struct {
	ID                string
	Email             string
	Nickname          string
	ProfileImageURL   string
	ThumbnailImageURL string
}

// Client fetches profiles from the Kakao userinfo endpoint.
type Client struct {
	userinfoURI string
}

// NewClient creates a Kakao client. An empty userinfoURI selects the default
// endpoint.
func NewClient(userinfoURI string) *Client {
	if userinfoURI == "" {
		userinfoURI = DefaultUserinfoEndpoint
	}
	return &Client{userinfoURI: userinfoURI}
}

// FetchProfile exchanges a Kakao access token for the user's profile. The
// call is bounded by a timeout; a failed or slow fetch fails the login
// attempt, it is never retried here.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build Kakao userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from Kakao: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch user info from Kakao: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// https://developers.kakao.com/docs/latest/en/kakaologin/rest-api#req-user-info
	var rawUserInfo struct {
		ID           json.Number `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname          string `json:"nickname"`
				ProfileImageURL   string `json:"profile_image_url"`
				ThumbnailImageURL string `json:"thumbnail_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&rawUserInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Kakao user info: %w", err)
	}

	return &Profile{
		ID:                rawUserInfo.ID.String(),
		Email:             rawUserInfo.KakaoAccount.Email,
		Nickname:          rawUserInfo.KakaoAccount.Profile.Nickname,
		ProfileImageURL:   rawUserInfo.KakaoAccount.Profile.ProfileImageURL,
		ThumbnailImageURL: rawUserInfo.KakaoAccount.Profile.ThumbnailImageURL,
	}, nil
}
