package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jammal/internal/cache"
	"jammal/internal/config"
	"jammal/internal/database"
	"jammal/internal/payment"
	"jammal/internal/server"
	"jammal/internal/services"
	"jammal/internal/storage"
	"jammal/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := config.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	opts := server.Options{Config: cfg, Logger: logger, AccessLog: true}

	// --- Optional collaborators ---
	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable, catalog cache reads will fall through")
		}
		opts.Cache = cache.NewRedisCache(rdb, cfg.Cache.TTL)
	}

	if cfg.Storage.S3Enabled {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Prefix:        cfg.Storage.Prefix,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize S3 image store")
		}
		opts.Images = store
	}

	if cfg.Payment.GatewayEnabled() {
		opts.Gateway = payment.NewGateway(payment.GatewayConfig{
			BaseURL:   cfg.Payment.BaseURL,
			KeyID:     cfg.Payment.KeyID,
			KeySecret: cfg.Payment.KeySecret,
			Currency:  cfg.Payment.Currency,
			Timeout:   cfg.Payment.Timeout,
		}, logger)
	} else {
		logger.Warn().Msg("payment processor not configured, checkout runs in demo mode")
	}

	if cfg.Broker.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.Broker.URL, Exchange: cfg.Broker.Exchange}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		opts.Events = services.EventPublisher(mqClient)

		if cfg.Broker.Consume {
			if err := mqClient.ConsumeOrderEvents(rabbitmq.LogEvent(logger)); err != nil {
				logger.Error().Err(err).Msg("failed to start RabbitMQ consumer")
			}
		}
	}

	app := server.New(db, opts)

	// --- Start HTTP Server ---
	go func() {
		logger.Info().Str("addr", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(cfg.Server.Port); err != nil {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info().Msg("server gracefully stopped")
}
