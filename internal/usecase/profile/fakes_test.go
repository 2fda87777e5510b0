package profile

import (
	"context"
	"errors"
	"sync"

	domain "profile-api/internal/domain/profile"

	"github.com/google/uuid"
)

type memRepo struct {
	mu    sync.Mutex
	order []uuid.UUID
	rows  map[uuid.UUID]domain.Profile
	gets  int
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[uuid.UUID]domain.Profile{}}
}

func (r *memRepo) Create(_ context.Context, in domain.Create) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Profile{}, r.err
	}
	p := domain.Profile{Fields: in.Fields, ID: uuid.New()}
	r.rows[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *memRepo) window(limit, offset int) []domain.Profile {
	out := make([]domain.Profile, 0)
	for i := offset; i < len(r.order) && len(out) < limit; i++ {
		out = append(out, r.rows[r.order[i]])
	}
	return out
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window(limit, offset), r.err
}

func (r *memRepo) Count(_ context.Context, limit, offset int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.window(limit, offset)), r.err
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.err != nil {
		return domain.Profile{}, r.err
	}
	p, ok := r.rows[id]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) Patch(_ context.Context, id uuid.UUID, patch domain.Patch) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Profile{}, r.err
	}
	p, ok := r.rows[id]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	p.Fields = patch.Apply(p.Fields)
	r.rows[id] = p
	return p, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memRepo) getCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

var errCacheDown = errors.New("cache down")

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
	misses  int
	down    bool
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, false, errCacheDown
	}
	b, ok := c.data[key]
	if !ok {
		c.misses++
	}
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return errCacheDown
	}
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return errCacheDown
	}
	c.deletes = append(c.deletes, key)
	delete(c.data, key)
	return nil
}

func (c *memCache) raw(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok
}

func (c *memCache) missCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses
}

// gatedRepo reads the row, then holds the value until release is closed or
// the caller's context ends.
type gatedRepo struct {
	*memRepo
	entered chan struct{}
	release chan struct{}
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{
		memRepo: newMemRepo(),
		entered: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (r *gatedRepo) Get(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	p, err := r.memRepo.Get(ctx, id)
	r.entered <- struct{}{}
	select {
	case <-r.release:
		return p, err
	case <-ctx.Done():
		return domain.Profile{}, ctx.Err()
	}
}

type event struct {
	kind string
	id   uuid.UUID
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPublisher) PublishProfileEvent(kind string, id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{kind: kind, id: id})
}
