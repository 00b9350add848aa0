package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	echoapi "github.com/pilab-dev/kauth/api/echo"
	"github.com/pilab-dev/kauth/cache"
	rediscache "github.com/pilab-dev/kauth/cache/redis"
	"github.com/pilab-dev/kauth/config"
	"github.com/pilab-dev/kauth/internal/kakao"
	"github.com/pilab-dev/kauth/internal/metrics"
	"github.com/pilab-dev/kauth/middleware"
	"github.com/pilab-dev/kauth/mongodb"
	"github.com/pilab-dev/kauth/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogger(cfg)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("mongo_db_name", cfg.MongoDBName).
		Str("issuer", cfg.Issuer).
		Bool("revoke_on_reuse", cfg.RevokeOnReuse).
		Msg("Starting kauth server")

	signingKey, err := cfg.DecodeJWTSecret()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode signing secret")
	}

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB connection")
	}
	db := mongodb.GetDB()

	// Repositories
	userRepo := mongodb.NewUserRepository(db)
	linkRepo, err := mongodb.NewSocialLinkRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize SocialLinkRepository")
	}
	sessionRepo, err := mongodb.NewRefreshSessionRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize RefreshSessionRepository")
	}

	// Services
	tokenService := services.NewTokenService(
		cfg.Issuer,
		signingKey,
		time.Duration(cfg.AccessTokenTTLSec)*time.Second,
		time.Duration(cfg.RefreshTokenTTLSec)*time.Second,
	)
	sessionService := services.NewSessionService(tokenService, sessionRepo, userRepo, services.SessionServiceOptions{
		RevokeOnReuse: cfg.RevokeOnReuse,
	})
	accountService := services.NewAccountService(userRepo, linkRepo)
	kakaoClient := kakao.NewClient(cfg.KakaoUserinfoURI)
	authService := services.NewAuthService(kakaoClient, accountService, tokenService, sessionService)

	claimsCache := newClaimsCache(cfg)
	defer claimsCache.Close()

	authenticator := middleware.NewAuthenticator(tokenService, claimsCache)

	metrics.InitCustomMetrics(prometheus.DefaultRegisterer)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	authAPI := echoapi.NewAuthAPI(authService, authenticator)
	authAPI.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		if err := mongodb.Ping(c.Request().Context()); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	go func() {
		log.Info().Msgf("HTTP server listening on port %s", cfg.HTTPPort)
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	log.Info().Msgf("Received signal: %v. Shutting down server...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	mongodb.CloseMongoDB(shutdownCtx)

	log.Info().Msg("Server gracefully stopped.")
}

func initLogger(cfg *config.ServerConfig) {
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = zerolog.InfoLevel
		log.Warn().
			Str("configured_log_level", cfg.LogLevel).
			Str("fallback_log_level", logLevel.String()).
			Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}
	zerolog.SetGlobalLevel(logLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// newClaimsCache selects the verified-claims cache backend: Redis when an
// address is configured, otherwise in-process ttlcache.
//
//nolint:ireturn
func newClaimsCache(cfg *config.ServerConfig) cache.ClaimsCache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryClaimsCache(time.Duration(cfg.AccessTokenTTLSec) * time.Second)
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	log.Info().Str("redis_addr", cfg.RedisAddr).Msg("Using Redis claims cache")
	return rediscache.NewClaimsCache(client, "kauth")
}
