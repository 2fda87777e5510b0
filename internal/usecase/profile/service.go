package profile

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	domain "profile-api/internal/domain/profile"
	"profile-api/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a collapsed cache miss, which no longer follows the
// context of the request that started it.
const loadTimeout = 10 * time.Second

const (
	EventCreated = "profile_created"
	EventUpdated = "profile_updated"
	EventDeleted = "profile_deleted"
)

// Publisher receives a notification after every committed mutation.
type Publisher interface {
	PublishProfileEvent(kind string, id uuid.UUID)
}

// Usecase is what the HTTP layer needs from the profile coordinator.
type Usecase interface {
	Create(ctx context.Context, in domain.Create) (domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]domain.Profile, error)
	Count(ctx context.Context, limit, offset int) (int, error)
	RandomID(ctx context.Context, limit, offset int) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	Patch(ctx context.Context, id uuid.UUID, p domain.Patch) (domain.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service applies cache-aside around single profile reads and invalidates
// the cached copy after each successful mutation. The store is always
// written first; the cache is never updated in place.
type Service struct {
	repo      domain.Repository
	cache     Cache
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	locks keyedLock
	loads singleflight.Group
	pick  func(n int) int
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPicker replaces the uniform random index source used by RandomID.
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) {
		if pick != nil {
			s.pick = pick
		}
	}
}

var _ Usecase = (*Service)(nil)

func NewService(repo domain.Repository, cache Cache, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cache:  cache,
		logger: zap.NewNop(),
		pick:   rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("profiles")
	return s
}

// Create never touches the cache: no key can exist for a fresh id.
func (s *Service) Create(ctx context.Context, in domain.Create) (domain.Profile, error) {
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return domain.Profile{}, err
	}
	s.publish(EventCreated, p.ID)
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	if limit < 0 || offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Count(ctx context.Context, limit, offset int) (int, error) {
	if limit < 0 || offset < 0 {
		return 0, domain.ErrInvalidInput
	}
	return s.repo.Count(ctx, limit, offset)
}

// RandomID picks one id uniformly from the List window.
func (s *Service) RandomID(ctx context.Context, limit, offset int) (uuid.UUID, error) {
	items, err := s.List(ctx, limit, offset)
	if err != nil {
		return uuid.Nil, err
	}
	if len(items) == 0 {
		return uuid.Nil, domain.ErrNoProfiles
	}
	return items[s.pick(len(items))].ID, nil
}

// Get trusts any cached copy unconditionally. On a miss the store is read
// and the result cached without expiry; an absent row caches nothing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	key := CacheKey(id)

	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("cache get %s: %w", key, err)
	}
	if ok {
		p, err := decodeProfile(b)
		if err != nil {
			return domain.Profile{}, err
		}
		s.countHit()
		s.logger.Debug("cache hit", zap.String("key", key))
		return p, nil
	}

	s.countMiss()
	s.logger.Debug("cache miss", zap.String("key", key))

	// The shared load outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := s.loads.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(lctx, id, key)
	})
	select {
	case <-ctx.Done():
		return domain.Profile{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Profile{}, res.Err
		}
		return res.Val.(domain.Profile), nil
	}
}

func (s *Service) load(ctx context.Context, id uuid.UUID, key string) (domain.Profile, error) {
	unlock := s.locks.RLock(id)
	defer unlock()

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}

	b, err := encodeProfile(p)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.cache.Set(ctx, key, b); err != nil {
		return domain.Profile{}, fmt.Errorf("cache set %s: %w", key, err)
	}
	return p, nil
}

// Patch commits to the store, then drops the cached copy. A NotFound from
// the store leaves the cache alone.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, patch domain.Patch) (domain.Profile, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.invalidate(ctx, id); err != nil {
		return domain.Profile{}, err
	}
	s.publish(EventUpdated, id)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.invalidate(ctx, id); err != nil {
		return err
	}
	s.publish(EventDeleted, id)
	return nil
}

// Exclusive blocks every read miss and write until the returned func is
// called. Bulk operations that rewrite the table and flush the cache hold it
// so no in-flight miss can re-cache a row from before the rewrite.
func (s *Service) Exclusive() func() {
	return s.locks.LockAll()
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) error {
	key := CacheKey(id)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Error("cache invalidation failed after commit", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	if s.metrics != nil {
		s.metrics.CacheInvalidations.Inc()
	}
	s.logger.Debug("cache invalidated", zap.String("key", key))
	return nil
}

func (s *Service) publish(kind string, id uuid.UUID) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishProfileEvent(kind, id)
}

func (s *Service) countHit() {
	if s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}
}

func (s *Service) countMiss() {
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}
}
