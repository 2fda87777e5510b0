package app

import (
	"context"
	"errors"
	"time"

	"profile-api/internal/config"
	"profile-api/internal/database/migration"
	dbpostgres "profile-api/internal/database/postgres"
	"profile-api/internal/infrastructure/cache"
	"profile-api/internal/pkg/metrics"
	"profile-api/internal/repository"
	"profile-api/internal/usecase/admin"
	profileuc "profile-api/internal/usecase/profile"
	"profile-api/internal/ws"

	"go.uber.org/zap"
)

// Container owns every long lived handle. Nothing in the service reaches
// for process wide state; handles are passed down from here.
type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	DB      *dbpostgres.Pool
	Cache   *cache.Redis
	Metrics *metrics.Metrics
	Hub     *ws.Hub

	Profiles *profileuc.Service
	Admin    *admin.Service
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := migration.Default(cfg.Database.MigrationsDir).Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, err
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	m := metrics.New()
	hub := ws.NewHub(logger)

	profiles := profileuc.NewService(
		repository.NewPostgresProfileRepository(db),
		rdb,
		profileuc.WithPublisher(ws.NewNotifier(hub)),
		profileuc.WithMetrics(m),
		profileuc.WithLogger(logger),
	)
	adm := admin.NewService(db, migration.Default(cfg.Database.MigrationsDir), rdb, profileuc.CacheKeyPattern(), logger,
		admin.WithGuard(profiles),
	)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Cache:    rdb,
		Metrics:  m,
		Hub:      hub,
		Profiles: profiles,
		Admin:    adm,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return errors.Join(c.Cache.Close(), c.DB.Close())
}
