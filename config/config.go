package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the server.
// Tags use mapstructure for Viper unmarshalling; every key can also be set
// through the environment.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"` // optional; empty selects the in-memory cache
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// Token issuance
	Issuer             string `mapstructure:"ISSUER"`
	JWTSecret          string `mapstructure:"JWT_SECRET"` // hex-encoded symmetric key
	AccessTokenTTLSec  int64  `mapstructure:"ACCESS_TOKEN_TTL_SEC"`
	RefreshTokenTTLSec int64  `mapstructure:"REFRESH_TOKEN_TTL_SEC"`

	// Session hardening: revoke all active sessions of a user when a rotated
	// refresh token is presented again.
	RevokeOnReuse bool `mapstructure:"REVOKE_ON_REUSE"`

	// External identity provider
	KakaoUserinfoURI string `mapstructure:"KAKAO_USERINFO_URI"`
}

// DecodeJWTSecret decodes the hex-encoded signing secret into raw key bytes.
func (c *ServerConfig) DecodeJWTSecret() ([]byte, error) {
	key, err := hex.DecodeString(c.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET is not valid hex: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	return key, nil
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/kauth/")
	v.AddConfigPath("$HOME/.kauth")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/kauth_dev")
	v.SetDefault("MONGO_DB_NAME", "kauth_dev")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("ISSUER", "kauth")
	// 32 bytes, hex encoded. CHANGE IN PRODUCTION.
	v.SetDefault("JWT_SECRET", "6b617574685f6465765f7365637265745f6b65795f6368616e67655f6d652121")
	v.SetDefault("ACCESS_TOKEN_TTL_SEC", 1800)     // 30 minutes
	v.SetDefault("REFRESH_TOKEN_TTL_SEC", 1209600) // 14 days
	v.SetDefault("REVOKE_ON_REUSE", false)
	v.SetDefault("KAKAO_USERINFO_URI", "https://kapi.kakao.com/v2/user/me")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on defaults and env vars.
		// Anything else (malformed file, permissions) is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
