package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryWindow is a process-local fixed window counter. Counts are not
// shared between replicas.
type MemoryWindow struct {
	mu    sync.Mutex
	cache *gocache.Cache
	now   func() time.Time
}

func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
		now:   time.Now,
	}
}

func (m *MemoryWindow) Hit(_ context.Context, key string, limit int, period time.Duration) (Result, error) {
	if err := checkArgs(key, limit, period); err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.lookup(key, now)
	if !ok {
		w = &window{resetAt: now.Add(period)}
		m.cache.Set(key, w, period)
	}
	w.count++

	return buildResult(w.count, limit, w.resetAt.Sub(now), now), nil
}

func (m *MemoryWindow) lookup(key string, now time.Time) (*window, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	w := v.(*window)
	if !now.Before(w.resetAt) {
		return nil, false
	}
	return w, true
}
