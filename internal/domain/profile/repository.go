package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrNoProfiles   = errors.New("no profiles in range")
	ErrInvalidInput = errors.New("invalid input")
)

type Repository interface {
	Create(ctx context.Context, in Create) (Profile, error)
	List(ctx context.Context, limit, offset int) ([]Profile, error)
	Count(ctx context.Context, limit, offset int) (int, error)
	Get(ctx context.Context, id uuid.UUID) (Profile, error)
	Patch(ctx context.Context, id uuid.UUID, p Patch) (Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
