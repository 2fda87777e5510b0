package seeder

import (
	"context"
	"errors"
	"testing"

	"profile-api/internal/database"

	"github.com/stretchr/testify/require"
)

type columnRows struct {
	cols []string
	i    int
}

func (r *columnRows) Close()     {}
func (r *columnRows) Err() error { return nil }

func (r *columnRows) Next() bool {
	r.i++
	return r.i <= len(r.cols)
}

func (r *columnRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.cols[r.i-1]
	return nil
}

// columnsDB answers the information_schema lookup with a fixed column set.
type columnsDB struct {
	database.DB
	cols   []string
	tables []string
}

func (d *columnsDB) Query(_ context.Context, _ string, args ...any) (database.Rows, error) {
	d.tables = append(d.tables, args[0].(string))
	return &columnRows{cols: d.cols}, nil
}

type stubSeeder struct {
	name string
	cols []string
	ran  *[]string
	err  error
}

func (s stubSeeder) Name() string      { return s.name }
func (s stubSeeder) Table() string     { return s.name }
func (s stubSeeder) Columns() []string { return s.cols }
func (s stubSeeder) Run(context.Context, database.DB) (int, error) {
	*s.ran = append(*s.ran, s.name)
	return 1, s.err
}

func TestRunner_RunsSeedersInOrder(t *testing.T) {
	var ran []string
	db := &columnsDB{cols: []string{"id", "username"}}
	r := Runner{Seeders: []Seeder{
		stubSeeder{name: "a", cols: []string{"id"}, ran: &ran},
		nil,
		stubSeeder{name: "b", cols: []string{"id", "username"}, ran: &ran},
	}}

	require.NoError(t, r.Run(context.Background(), db))
	require.Equal(t, []string{"a", "b"}, ran)
	require.Equal(t, []string{"a", "b"}, db.tables)
}

func TestRunner_SchemaMismatchSkipsSeeder(t *testing.T) {
	var ran []string
	db := &columnsDB{cols: []string{"id"}}
	r := Runner{Seeders: []Seeder{
		stubSeeder{name: "profiles", cols: []string{"id", "mail", "job"}, ran: &ran},
	}}

	err := r.Run(context.Background(), db)
	require.ErrorIs(t, err, ErrSchemaMismatch)
	require.ErrorContains(t, err, "mail, job")
	require.Empty(t, ran)
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	db := &columnsDB{cols: []string{"id"}}
	r := Runner{Seeders: []Seeder{
		stubSeeder{name: "a", cols: []string{"id"}, ran: &ran, err: boom},
		stubSeeder{name: "b", cols: []string{"id"}, ran: &ran},
	}}

	err := r.Run(context.Background(), db)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "seed a")
	require.Equal(t, []string{"a"}, ran)
}

func TestProfileSeeder_ColumnsMatchGeneratedRow(t *testing.T) {
	require.Len(t, ProfileSeeder{}.Columns(), 14)
	require.Equal(t, "profiles", ProfileSeeder{}.Table())
}
