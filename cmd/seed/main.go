// Command seed applies migrations and creates the admin identity if it does
// not exist yet. It is safe to run repeatedly.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/service"
	"github.com/stackit/qa-api/internal/infrastructure/db/postgres"
	"github.com/stackit/qa-api/internal/pkg/config"
	"github.com/stackit/qa-api/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "stackit-seed",
	})

	if err := seed(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := postgres.ApplyMigrations(ctx, cfg.Postgres.URL); err != nil {
		return err
	}
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:     cfg.Postgres.URL,
		Timeout: cfg.Postgres.Timeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool, cfg.Postgres.Timeout)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL())
	auth := service.NewAuthService(users, hasher, tokens, nil, log)

	admin, created, err := auth.EnsureAdmin(ctx, cfg.Seed.Username, cfg.Seed.Email, cfg.Seed.Password)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("id", admin.ID).Str("username", admin.Username).Msg("admin identity created")
	} else {
		log.Info().Str("username", admin.Username).Msg("admin identity already present")
	}
	return nil
}
