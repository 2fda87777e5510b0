package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"profile-api/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// missingColumns lists the wanted columns table lacks in the current schema,
// in the order they were asked for.
func missingColumns(ctx context.Context, db database.DB, table string, want []string) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	have := map[string]bool{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		have[c] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, c := range want {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

func checkSchema(ctx context.Context, db database.DB, s Seeder) error {
	missing, err := missingColumns(ctx, db, s.Table(), s.Columns())
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s lacks %s", ErrSchemaMismatch, s.Table(), strings.Join(missing, ", "))
	}
	return nil
}
