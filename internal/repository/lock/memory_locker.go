package lock

import (
	"context"
	"sync"
	"time"

	"fitai-planner-be/pkg/planner"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryLocker is the single-process fallback used when Redis is unreachable.
type MemoryLocker struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ planner.SubjectLocker = (*MemoryLocker)(nil)

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		cache: cache.New(planner.DefaultLockTTL, time.Minute),
	}
}

func (l *MemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.cache.Add(key, token, ttl); err != nil {
		return nil, planner.ErrCorrectionInProgress
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if held, found := l.cache.Get(key); found && held == token {
			l.cache.Delete(key)
		}
	}, nil
}
