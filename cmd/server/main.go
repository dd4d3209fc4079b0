package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/payledger/internal/adapter/http"
	"github.com/iho/payledger/internal/adapter/http/handler"
	"github.com/iho/payledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/payledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/payledger/internal/adapter/repository/redis"
	"github.com/iho/payledger/internal/infrastructure/config"
	"github.com/iho/payledger/internal/infrastructure/eventpublisher"
	"github.com/iho/payledger/internal/infrastructure/logger"
	"github.com/iho/payledger/internal/infrastructure/metrics"
	"github.com/iho/payledger/internal/infrastructure/postgres"
	"github.com/iho/payledger/internal/infrastructure/redis"
	"github.com/iho/payledger/internal/usecase"
)

const (
	serviceName = "payledger"

	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:         cfg.RedisURL,
		PoolSize:    cfg.RedisPoolSize,
		DialTimeout: cfg.RedisDialTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout)
	retrier := postgresRepo.NewRetrier(logger).WithMaxRetries(cfg.TxMaxRetries).WithMetrics(m)
	docRepo := postgresRepo.NewDocumentRepository(pool)
	receiptRepo := postgresRepo.NewReceiptRepository(pool)
	allocRepo := postgresRepo.NewAllocationRepository(pool)
	seqRepo := postgresRepo.NewSequenceRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	consistencyRepo := postgresRepo.NewConsistencyRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	documentUC := usecase.NewDocumentUseCase(txManager, retrier, docRepo, outboxRepo, idGen, cache, m)
	ingestionUC := usecase.NewIngestionUseCase(documentUC)
	sequenceUC := usecase.NewSequenceUseCase(txManager, retrier, seqRepo, m)
	receiptUC := usecase.NewReceiptUseCase(txManager, retrier, sequenceUC, docRepo, receiptRepo, allocRepo, outboxRepo, idGen, cache, m)
	allocationUC := usecase.NewAllocationUseCase(txManager, retrier, docRepo, receiptRepo, allocRepo, outboxRepo, idGen, cache, m)
	balanceUC := usecase.NewBalanceUseCase(docRepo, documentUC, cache)
	consistencyUC := usecase.NewConsistencyUseCase(consistencyRepo, m)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DocumentHandler:   handler.NewDocumentHandler(ingestionUC, documentUC),
		ReceiptHandler:    handler.NewReceiptHandler(receiptUC),
		AllocationHandler: handler.NewAllocationHandler(allocationUC),
		BalanceHandler:    handler.NewBalanceHandler(balanceUC),
		SequenceHandler:   handler.NewSequenceHandler(sequenceUC),
		LedgerHandler:     handler.NewLedgerHandler(consistencyUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisPinger(redisClient)),
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       rateLimiter,
		HTTPMetrics:       middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Logger:            logger,
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewRedisPublisher(redisClient),
		Metrics:    m,
		Logger:     logger.With().Str("component", "event_publisher").Logger(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	server := newHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return ignoreCanceled(publisher.Start(gctx))
	})

	g.Go(func() error {
		rateLimiter.RunCleanup(gctx, limiterCleanupInterval, limiterMaxIdle)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func redisPinger(client *goredis.Client) handler.Pinger {
	return handler.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
