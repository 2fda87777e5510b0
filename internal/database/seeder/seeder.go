package seeder

import (
	"context"

	"profile-api/internal/database"
)

// Seeder fills one table. The runner checks that Table has every column in
// Columns before calling Run, so a seeder never inserts into a stale schema.
type Seeder interface {
	Name() string
	Table() string
	Columns() []string
	Run(ctx context.Context, db database.DB) (int, error)
}
