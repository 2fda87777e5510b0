package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"profile-api/internal/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ProfileSeeder inserts Count generated profiles in a single transaction.
// A zero Seed draws a random one.
type ProfileSeeder struct {
	Count int
	Seed  uint64
}

var profileColumns = []string{
	"id", "username", "mail", "name", "ssn", "sex", "birthdate", "blood_group",
	"address", "residence", "website", "current_location", "job", "company",
}

func (ProfileSeeder) Name() string      { return "profiles" }
func (ProfileSeeder) Table() string     { return "profiles" }
func (ProfileSeeder) Columns() []string { return profileColumns }

func (s ProfileSeeder) Run(ctx context.Context, db database.DB) (int, error) {
	if s.Count <= 0 {
		return 0, fmt.Errorf("profile count must be positive, got %d", s.Count)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	insert := insertStatement("profiles", profileColumns)
	faker := gofakeit.New(s.Seed)
	for i := 0; i < s.Count; i++ {
		row, err := fakeProfileRow(faker)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx, insert, row...); err != nil {
			return 0, fmt.Errorf("insert profile %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return s.Count, nil
}

func insertStatement(table string, columns []string) string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
}

func fakeProfileRow(f *gofakeit.Faker) ([]any, error) {
	website := make([]string, 1+f.IntN(3))
	for i := range website {
		website[i] = f.URL()
	}
	websiteJSON, err := json.Marshal(website)
	if err != nil {
		return nil, err
	}
	location, err := json.Marshal([]string{
		fmt.Sprintf("%.6f", f.Latitude()),
		fmt.Sprintf("%.6f", f.Longitude()),
	})
	if err != nil {
		return nil, err
	}

	birth := f.DateRange(time.Date(1920, 1, 1, 0, 0, 0, 0, time.UTC), time.Now().UTC().AddDate(-18, 0, 0))
	addr := f.Address()
	sex := "M"
	if f.Gender() == "female" {
		sex = "F"
	}

	return []any{
		uuid.New(),
		f.Username(),
		f.Email(),
		f.Name(),
		f.SSN(),
		sex,
		time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC),
		f.RandomString(bloodGroups),
		addr.Address,
		fmt.Sprintf("%s, %s %s", f.Street(), f.City(), f.Zip()),
		string(websiteJSON),
		string(location),
		f.JobTitle(),
		f.Company(),
	}, nil
}
