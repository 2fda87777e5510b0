package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"profile-api/internal/database"
	"profile-api/internal/domain/profile"

	"github.com/google/uuid"
)

const profileColumns = `id, username, mail, name, ssn, sex, birthdate, blood_group, address, residence, website, current_location, job, company`

type PostgresProfileRepository struct {
	db database.DB
}

var _ profile.Repository = (*PostgresProfileRepository)(nil)

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Create(ctx context.Context, in profile.Create) (profile.Profile, error) {
	args, err := fieldArgs(in.Fields)
	if err != nil {
		return profile.Profile{}, err
	}
	args = append([]any{uuid.New()}, args...)

	row := r.db.QueryRow(ctx, `
INSERT INTO profiles (`+profileColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING `+profileColumns, args...)

	p, err := scanProfile(row)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

func (r *PostgresProfileRepository) List(ctx context.Context, limit, offset int) ([]profile.Profile, error) {
	if limit < 0 || offset < 0 {
		return nil, profile.ErrInvalidInput
	}

	rows, err := r.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) Count(ctx context.Context, limit, offset int) (int, error) {
	if limit < 0 || offset < 0 {
		return 0, profile.ErrInvalidInput
	}

	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM (SELECT id FROM profiles OFFSET $1 LIMIT $2) AS page`, offset, limit).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func (r *PostgresProfileRepository) Get(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// Patch with no fields present writes nothing and returns the current row.
func (r *PostgresProfileRepository) Patch(ctx context.Context, id uuid.UUID, patch profile.Patch) (profile.Profile, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	current, err := scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return profile.Profile{}, err
	}

	args, err := fieldArgs(patch.Apply(current.Fields))
	if err != nil {
		return profile.Profile{}, err
	}
	args = append([]any{id}, args...)

	updated, err := scanProfile(tx.QueryRow(ctx, `
UPDATE profiles SET
	username = $2, mail = $3, name = $4, ssn = $5, sex = $6, birthdate = $7,
	blood_group = $8, address = $9, residence = $10, website = $11,
	current_location = $12, job = $13, company = $14
WHERE id = $1
RETURNING `+profileColumns, args...))
	if err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return profile.Profile{}, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *PostgresProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return profile.ErrNotFound
	}
	return nil
}

// fieldArgs renders f in column order, without the id.
func fieldArgs(f profile.Fields) ([]any, error) {
	var birthdate *time.Time
	if f.Birthdate != nil {
		t := f.Birthdate.Time
		birthdate = &t
	}
	website, err := encodeList(f.Website)
	if err != nil {
		return nil, err
	}
	location, err := encodeList(f.CurrentLocation)
	if err != nil {
		return nil, err
	}
	return []any{
		f.Username, f.Mail, f.Name, f.SSN, f.Sex, birthdate,
		f.BloodGroup, f.Address, f.Residence, website, location,
		f.Job, f.Company,
	}, nil
}

func encodeList(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodeList(b []byte) ([]string, error) {
	if b == nil {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode json list: %w", err)
	}
	return out, nil
}

type profileRow interface {
	Scan(dest ...any) error
}

func scanProfile(row profileRow) (profile.Profile, error) {
	var (
		p         profile.Profile
		birthdate *time.Time
		website   []byte
		location  []byte
	)
	err := row.Scan(
		&p.ID, &p.Username, &p.Mail, &p.Name, &p.SSN, &p.Sex, &birthdate,
		&p.BloodGroup, &p.Address, &p.Residence, &website, &location,
		&p.Job, &p.Company,
	)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	if birthdate != nil {
		d := profile.DateOf(*birthdate)
		p.Birthdate = &d
	}
	if p.Website, err = decodeList(website); err != nil {
		return profile.Profile{}, err
	}
	if p.CurrentLocation, err = decodeList(location); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}
