package seeder

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFakeProfileRow_Shape(t *testing.T) {
	row, err := fakeProfileRow(gofakeit.New(42))
	require.NoError(t, err)
	require.Len(t, row, 14)

	_, ok := row[0].(uuid.UUID)
	require.True(t, ok, "first column is the id")

	require.Contains(t, []string{"M", "F"}, row[5])
	require.Contains(t, bloodGroups, row[7])

	birth, ok := row[6].(time.Time)
	require.True(t, ok)
	require.True(t, birth.Before(time.Now().AddDate(-17, 0, 0)))

	var website []string
	require.NoError(t, json.Unmarshal([]byte(row[10].(string)), &website))
	require.NotEmpty(t, website)

	var location []string
	require.NoError(t, json.Unmarshal([]byte(row[11].(string)), &location))
	require.Len(t, location, 2)
}

func TestFakeProfileRow_Deterministic(t *testing.T) {
	a, err := fakeProfileRow(gofakeit.New(7))
	require.NoError(t, err)
	b, err := fakeProfileRow(gofakeit.New(7))
	require.NoError(t, err)

	// ids come from uuid.New and always differ; the generated attributes do not.
	require.NotEqual(t, a[0], b[0])
	require.Equal(t, a[1:6], b[1:6])
}

func TestProfileSeeder_RejectsNonPositiveCount(t *testing.T) {
	n, err := ProfileSeeder{Count: 0}.Run(context.Background(), nil)
	require.ErrorContains(t, err, "must be positive")
	require.Zero(t, n)
}

func TestInsertStatement(t *testing.T) {
	require.Equal(t,
		"INSERT INTO profiles (id, username, mail) VALUES ($1, $2, $3)",
		insertStatement("profiles", []string{"id", "username", "mail"}),
	)
	require.Contains(t, insertStatement("profiles", profileColumns), "$14)")
}

func TestRunner_NilDB(t *testing.T) {
	err := Runner{Seeders: Defaults(1)}.Run(context.Background(), nil)
	require.Error(t, err)
}
