package admin

import (
	"context"
	"database/sql"
	"fmt"

	"profile-api/internal/database"
	"profile-api/internal/database/seeder"

	"go.uber.org/zap"
)

type SchemaRunner interface {
	Reset(ctx context.Context, db *sql.DB) error
}

type SeedRunner interface {
	Run(ctx context.Context, db database.DB) error
}

// CacheFlusher drops every key matching pattern.
type CacheFlusher interface {
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// Guard excludes profile reads and writes while the table is rewritten.
type Guard interface {
	Exclusive() func()
}

type Option func(*Service)

func WithGuard(g Guard) Option {
	return func(s *Service) { s.guard = g }
}

// Service recreates the schema and bulk loads fake data. Recreating the
// schema also flushes cached profiles, since their rows are gone.
type Service struct {
	db           database.DB
	schema       SchemaRunner
	cache        CacheFlusher
	cachePattern string
	guard        Guard
	newSeeder    func(count int) SeedRunner
	logger       *zap.Logger
}

func NewService(db database.DB, schema SchemaRunner, cache CacheFlusher, cachePattern string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		db:           db,
		schema:       schema,
		cache:        cache,
		cachePattern: cachePattern,
		newSeeder: func(count int) SeedRunner {
			return seeder.Runner{Seeders: seeder.Defaults(count), Logger: logger}
		},
		logger: logger.Named("admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ResetSchema(ctx context.Context) error {
	if s.guard != nil {
		unlock := s.guard.Exclusive()
		defer unlock()
	}

	if err := s.schema.Reset(ctx, s.db.SQLDB()); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.DeleteByPattern(ctx, s.cachePattern)
	if err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	s.logger.Info("schema reset", zap.Int("flushed_keys", n))
	return nil
}

func (s *Service) SeedProfiles(ctx context.Context, count int) error {
	if err := s.newSeeder(count).Run(ctx, s.db); err != nil {
		return err
	}
	s.logger.Info("profiles seeded", zap.Int("count", count))
	return nil
}
