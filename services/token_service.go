package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherrors "github.com/pilab-dev/kauth/errors"
)

// clockSkewLeeway is tolerated at both edges of a token's validity window.
const clockSkewLeeway = 60 * time.Second

// TokenClaims is the verified claim set of a first-party token. Email and
// Nickname are only present on access tokens; refresh tokens carry nothing
// but the user id.
type TokenClaims struct {
	UserID    string
	Email     string
	Nickname  string
	ExpiresAt time.Time
}

// TokenService mints and verifies the signed, time-bound tokens this service
// issues. Access and refresh tokens share the codec, signing key and issuer
// but have distinct claim shapes and TTLs: refresh tokens must not leak
// profile data.
type TokenService struct {
	issuer     string
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService. The key is the raw symmetric
// signing key, decoded once at process start; it is never mutated afterwards.
func NewTokenService(issuer string, key []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		issuer:     issuer,
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccess mints a short-lived access token carrying the user's identity
// claims.
func (s *TokenService) IssueAccess(userID, email, nickname string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.issuer,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(s.accessTTL)),
		"uid":   userID,
		"email": email,
		"name":  nickname,
	}
	return s.sign(claims)
}

// IssueRefresh mints a refresh token. Claims stay minimal: issuer, validity
// window and the user id.
func (s *TokenService) IssueRefresh(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(s.refreshTTL)),
		"uid": userID,
	}
	return s.sign(claims)
}

func (s *TokenService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", autherrors.NewServerError("failed to sign token")
	}
	return signed, nil
}

// Verify parses and validates a token: signature, issuer and validity window,
// with the clock-skew leeway applied at both edges. Every failure collapses
// into a single unauthorized error so callers cannot tell which check
// rejected them.
func (s *TokenService) Verify(tokenValue string) (*TokenClaims, error) {
	parsed, err := jwt.Parse(tokenValue,
		func(token *jwt.Token) (interface{}, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, autherrors.NewUnauthorized("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.NewUnauthorized("invalid token")
	}

	uid, _ := claims["uid"].(string)
	if uid == "" {
		return nil, autherrors.NewUnauthorized("invalid token")
	}

	out := &TokenClaims{UserID: uid}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		out.Nickname = name
	}
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
