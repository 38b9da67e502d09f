// @title                       StackIt Q&A API
// @version                     1.0
// @description                 Questions, answers, votes and tags with bearer-token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/api"
	"github.com/stackit/qa-api/internal/api/handler"
	"github.com/stackit/qa-api/internal/api/metrics"
	"github.com/stackit/qa-api/internal/api/middleware"
	"github.com/stackit/qa-api/internal/core/service"
	mongodb "github.com/stackit/qa-api/internal/infrastructure/db/mongo"
	"github.com/stackit/qa-api/internal/infrastructure/db/postgres"
	redisdb "github.com/stackit/qa-api/internal/infrastructure/db/redis"
	"github.com/stackit/qa-api/internal/infrastructure/queue"
	"github.com/stackit/qa-api/internal/pkg/config"
	"github.com/stackit/qa-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not configured yet.
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "stackit-api",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// ── PostgreSQL ────────────────────────────────────────────
	if err := postgres.ApplyMigrations(ctx, cfg.Postgres.URL); err != nil {
		return err
	}
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.Postgres.URL,
		MaxConns: cfg.Postgres.MaxConns,
		Timeout:  cfg.Postgres.Timeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Postgres.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	// ── Redis ────────────────────────────────────────────────
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Postgres.Timeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// ── Repositories ─────────────────────────────────────────
	timeout := cfg.Postgres.Timeout
	users := postgres.NewUserRepository(pool, timeout)
	questions := postgres.NewQuestionRepository(pool, timeout)
	answers := postgres.NewAnswerRepository(pool, timeout)
	votes := postgres.NewVoteRepository(pool, timeout)
	tags := postgres.NewTagRepository(pool, timeout)
	activityRepo := mongodb.NewActivityRepository(mongoDB, timeout)
	if err := activityRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	views := redisdb.NewViewCounter(rdb, time.Hour)

	// ── Activity dispatcher ──────────────────────────────────
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activityRepo, logger.Component("activity"))
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()
	if err := metrics.RegisterActivityQueue(prometheus.DefaultRegisterer, dispatcher); err != nil {
		return err
	}

	// ── Services ─────────────────────────────────────────────
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL())
	authService := service.NewAuthService(users, hasher, tokens, dispatcher, logger.Component("auth"))

	if cfg.Seed.Enabled {
		if _, created, err := authService.EnsureAdmin(ctx, cfg.Seed.Username, cfg.Seed.Email, cfg.Seed.Password); err != nil {
			return err
		} else if created {
			log.Info().Str("username", cfg.Seed.Username).Msg("admin identity seeded")
		}
	}

	limiterStore, err := redisdb.NewLimiterStore(rdb, "stackit:login")
	if err != nil {
		return err
	}
	loginLimiter, err := middleware.NewLimiter(limiterStore, cfg.Auth.LoginRateLimit)
	if err != nil {
		return err
	}

	// ── Router ───────────────────────────────────────────────
	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Users:        service.NewUserService(users, dispatcher, logger.Component("users")),
		Questions:    service.NewQuestionService(questions, answers, tags, views, dispatcher, logger.Component("questions")),
		Answers:      service.NewAnswerService(answers, questions, dispatcher, logger.Component("answers")),
		Votes:        service.NewVoteService(votes, questions, dispatcher, logger.Component("votes")),
		Activity:     service.NewActivityService(activityRepo),
		LoginLimiter: loginLimiter,
		Checks: []handler.DependencyCheck{
			{Name: "postgres", Check: pool.Ping},
			{Name: "mongodb", Check: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		Log: log,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
