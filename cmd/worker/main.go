package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/config"
	"github.com/noah-isme/backend-procure/internal/events"
	"github.com/noah-isme/backend-procure/internal/jobs"
	"github.com/noah-isme/backend-procure/internal/lock"
	"github.com/noah-isme/backend-procure/internal/obs"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics("procure", nil)

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required for the worker")
	}
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	if pool != nil {
		defer pool.Close()
	}

	redisCfg, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisCfg)
	defer func() { _ = rdb.Close() }()

	sweeper, err := newComplianceService(cfg, logger, pool, rdb)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise compliance service")
	}

	asynqLogger := jobs.Logger{L: logger}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			jobs.QueueMaintenance: 1,
		},
		Logger:          asynqLogger,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   asynqLogger,
	})

	entryID, err := jobs.RegisterSweep(scheduler, cfg.ComplianceSweepSpec, cfg.ComplianceExpiryWarning)
	if err != nil {
		logger.Fatal().Err(err).Msg("schedule compliance sweep")
	}

	if err := srv.Start(jobs.NewMux(jobs.SweepHandler{Sweeper: sweeper, Logger: logger})); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	logger.Info().
		Str("spec", cfg.ComplianceSweepSpec).
		Str("entry_id", entryID).
		Dur("warning", cfg.ComplianceExpiryWarning).
		Int("concurrency", cfg.WorkerConcurrency).
		Msg("worker started")

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set; sweeping in-memory fixtures only")
		return nil
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolCfg.ConnConfig.Tracer = obs.PGXTracer{}
	if poolCfg.ConnConfig.RuntimeParams == nil {
		poolCfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "procure-worker"

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(initCtx, poolCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(initCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

// newComplianceService shares the API's supplier cache and item locks through
// rdb, so sweeps invalidate cached searches and serialise with Verify.
func newComplianceService(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client) (*compliance.Service, error) {
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: logger},
		events.MetricsNotifier{},
	}}
	var (
		supplierStore   supplier.Store
		complianceStore compliance.Store
	)
	if pool != nil {
		bus.Store = events.PostgresStore{Pool: pool}
		supplierStore = supplier.PostgresStore{Pool: pool}
		complianceStore = compliance.PostgresStore{Pool: pool}
	} else {
		supplierStore = supplier.NewMemoryStore(supplier.Fixtures()...)
		complianceStore = compliance.NewMemoryStore(compliance.FixtureItems(time.Now())...)
	}
	var (
		cache  *supplier.Cache
		locker lock.Runner = &lock.Local{}
	)
	if rdb != nil {
		cache = supplier.NewCache(rdb, cfg.SearchCacheTTL)
		locker = lock.Locker{R: rdb, RetryBackoff: cfg.LockRetryBackoff, Prefix: "procure:lock"}
	}
	suppliers, err := supplier.NewService(supplier.ServiceConfig{Store: supplierStore, Cache: cache, Events: bus, Logger: logger})
	if err != nil {
		return nil, err
	}
	return compliance.NewService(compliance.ServiceConfig{
		Store:     complianceStore,
		Suppliers: suppliers,
		Locker:    locker,
		LockTTL:   cfg.LockTTL,
		Events:    bus,
		Logger:    logger,
	})
}
