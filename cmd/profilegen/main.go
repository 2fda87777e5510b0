package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"profile-api/internal/config"
	"profile-api/internal/database/migration"
	dbpostgres "profile-api/internal/database/postgres"
	"profile-api/internal/database/seeder"
	"profile-api/internal/infrastructure/cache"
	profileuc "profile-api/internal/usecase/profile"

	"go.uber.org/zap"
)

type options struct {
	count   int
	seed    uint64
	reset   bool
	timeout time.Duration
}

func main() {
	var opts options
	flag.IntVar(&opts.count, "count", 100, "number of fake profiles to insert")
	flag.Uint64Var(&opts.seed, "seed", 0, "faker seed (0 picks a random one)")
	flag.BoolVar(&opts.reset, "reset", false, "drop and recreate the schema and flush cached profiles first")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	err = run(opts, logger)
	_ = logger.Sync()
	if err != nil {
		logger.Fatal("profilegen failed", zap.Error(err))
	}
}

func run(opts options, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.count <= 0 || opts.count > cfg.Profiles.MaxSeedCount {
		return fmt.Errorf("count must be in 1..%d, got %d", cfg.Profiles.MaxSeedCount, opts.count)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	runner := migration.Default(cfg.Database.MigrationsDir)
	if opts.reset {
		if err := runner.Reset(ctx, db.SQLDB()); err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
		flushCache(ctx, cfg, logger)
	} else if err := runner.Run(ctx, db.SQLDB()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	started := time.Now()
	s := seeder.Runner{Seeders: []seeder.Seeder{seeder.ProfileSeeder{Count: opts.count, Seed: opts.seed}}, Logger: logger}
	if err := s.Run(ctx, db); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("seed profiles: timed out after %s: %w", opts.timeout, err)
		}
		return fmt.Errorf("seed profiles: %w", err)
	}
	logger.Info("profiles seeded", zap.Int("count", opts.count), zap.Duration("took", time.Since(started)))
	return nil
}

// flushCache is best effort: the generator can run without Redis.
func flushCache(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	rdb, err := cache.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, cached profiles not flushed", zap.Error(err))
		return
	}
	defer func() { _ = rdb.Close() }()

	n, err := rdb.DeleteByPattern(ctx, profileuc.CacheKeyPattern())
	if err != nil {
		logger.Warn("failed to flush cached profiles", zap.Error(err))
		return
	}
	logger.Info("cached profiles flushed", zap.Int("keys", n))
}
