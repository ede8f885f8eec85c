package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/servicecenter/service-center-api/docs"
	"github.com/servicecenter/service-center-api/internal/api"
	"github.com/servicecenter/service-center-api/internal/core/service"
	"github.com/servicecenter/service-center-api/internal/core/token"
	"github.com/servicecenter/service-center-api/internal/infrastructure/config"
	"github.com/servicecenter/service-center-api/internal/infrastructure/crypto"
	mongodb "github.com/servicecenter/service-center-api/internal/infrastructure/db/mongo"
	redisdb "github.com/servicecenter/service-center-api/internal/infrastructure/db/redis"
	"github.com/servicecenter/service-center-api/internal/infrastructure/mail"
	"github.com/servicecenter/service-center-api/pkg/logger"
)

const startupTimeout = 15 * time.Second

// @title                      Service Center Identity API
// @version                    1.0
// @description                Identity and session management for the vehicle service-center platform.
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Identity core wiring ---
	store := mongodb.NewAccountRepository(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := crypto.NewBcryptHasher()
	notifier := mail.NewMailgunNotifier(cfg.Mailgun.Domain, cfg.Mailgun.APIKey, cfg.Mailgun.Sender)
	throttle := redisdb.NewSendThrottle(rdb, cfg.OTPSendCooldown)

	identity := service.NewIdentityService(store, hasher, notifier, issuer, throttle, service.IdentityConfig{
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
		RegisterOTPTTL: cfg.RegisterOTPTTL,
		ResetOTPTTL:    cfg.ResetOTPTTL,
	}, log)

	if err := identity.EnsureAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, identity, issuer, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
