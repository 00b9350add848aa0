package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "kauth", cfg.Issuer)
	assert.EqualValues(t, 1800, cfg.AccessTokenTTLSec)
	assert.EqualValues(t, 1209600, cfg.RefreshTokenTTLSec)
	assert.False(t, cfg.RevokeOnReuse)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "https://kapi.kakao.com/v2/user/me", cfg.KakaoUserinfoURI)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("REVOKE_ON_REUSE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.True(t, cfg.RevokeOnReuse)
}

func TestDecodeJWTSecret(t *testing.T) {
	cfg := &ServerConfig{JWTSecret: "deadbeef"}
	key, err := cfg.DecodeJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, key)
}

func TestDecodeJWTSecret_Invalid(t *testing.T) {
	for name, secret := range map[string]string{
		"not hex": "zzzz",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			cfg := &ServerConfig{JWTSecret: secret}
			_, err := cfg.DecodeJWTSecret()
			assert.Error(t, err)
		})
	}
}
