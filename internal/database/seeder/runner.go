package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"profile-api/internal/database"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

// Run applies the seeders in order and stops at the first failure.
func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := checkSchema(ctx, db, s); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}

		started := time.Now()
		n, err := s.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.Info("seeded",
			zap.String("seeder", s.Name()),
			zap.String("table", s.Table()),
			zap.Int("rows", n),
			zap.Duration("took", time.Since(started)),
		)
	}
	return nil
}
