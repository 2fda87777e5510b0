package profile

import (
	"context"
	"encoding/json"
	"fmt"

	domain "profile-api/internal/domain/profile"

	"github.com/google/uuid"
)

const cacheKeyPrefix = "profile_"

// Cache is the byte store the coordinator mirrors read views into.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CacheKey returns the key a profile's read view is cached under.
func CacheKey(id uuid.UUID) string {
	return cacheKeyPrefix + id.String()
}

// CacheKeyPattern matches every profile key.
func CacheKeyPattern() string {
	return cacheKeyPrefix + "*"
}

// encodeProfile is deterministic: struct fields are always emitted in
// declaration order.
func encodeProfile(p domain.Profile) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode cached profile: %w", err)
	}
	return b, nil
}

func decodeProfile(b []byte) (domain.Profile, error) {
	var p domain.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("decode cached profile: %w", err)
	}
	return p, nil
}
