package profile

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const lockShards = 64

// keyedLock serialises a write's commit+invalidate against a read miss's
// load+populate for the same id. Ids hash onto a fixed set of shards, so
// unrelated ids may occasionally share one.
type keyedLock struct {
	shards [lockShards]sync.RWMutex
}

func (l *keyedLock) shard(id uuid.UUID) *sync.RWMutex {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return &l.shards[h.Sum32()%lockShards]
}

func (l *keyedLock) Lock(id uuid.UUID) func() {
	m := l.shard(id)
	m.Lock()
	return m.Unlock
}

func (l *keyedLock) RLock(id uuid.UUID) func() {
	m := l.shard(id)
	m.RLock()
	return m.RUnlock
}

// LockAll takes every shard exclusively, always in index order so two
// callers cannot deadlock each other.
func (l *keyedLock) LockAll() func() {
	for i := range l.shards {
		l.shards[i].Lock()
	}
	return func() {
		for i := len(l.shards) - 1; i >= 0; i-- {
			l.shards[i].Unlock()
		}
	}
}
