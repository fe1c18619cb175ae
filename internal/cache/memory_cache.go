package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// memoryCache keeps JSON-encoded values in process memory. Entries are
// stored as pointers so CompareAndDelete/CompareAndSwap compare identity.
type memoryCache struct {
	entries    sync.Map
	defaultTTL time.Duration
	now        func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is the in-process Cache. Run drives its expiry sweep.
type MemoryCache interface {
	Cache
	Run(ctx context.Context, interval time.Duration) error
	Len() int
}

func NewMemoryCache(defaultTTL time.Duration) MemoryCache {
	return &memoryCache{defaultTTL: defaultTTL, now: time.Now}
}

func (m *memoryCache) Get(_ context.Context, key string, value any) (bool, error) {

	v, ok := m.entries.Load(key)
	if !ok {
		return false, nil
	}

	e := v.(*entry)
	if e.expired(m.now()) {
		m.entries.CompareAndDelete(key, v)
		return false, nil
	}

	if err := json.Unmarshal(e.data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	return true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	m.entries.Store(key, &entry{data: data, expiresAt: m.now().Add(m.ttl(ttl))})

	return nil
}

func (m *memoryCache) Touch(_ context.Context, key string, ttl time.Duration) error {

	v, ok := m.entries.Load(key)
	if !ok {
		return nil
	}

	e := v.(*entry)
	if e.expired(m.now()) {
		m.entries.CompareAndDelete(key, v)
		return nil
	}

	m.entries.CompareAndSwap(key, v, &entry{data: e.data, expiresAt: m.now().Add(m.ttl(ttl))})

	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *memoryCache) Ping(context.Context) error {
	return nil
}

func (m *memoryCache) Close() error {
	m.entries.Clear()
	return nil
}

func (m *memoryCache) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Run sweeps expired entries every interval until ctx is done.
func (m *memoryCache) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.deleteExpired(); n > 0 {
				slog.Debug("Expired cache entries removed", slog.Int("count", n))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *memoryCache) deleteExpired() int {
	now := m.now()
	removed := 0
	m.entries.Range(func(key, value any) bool {
		if value.(*entry).expired(now) {
			if m.entries.CompareAndDelete(key, value) {
				removed++
			}
		}
		return true
	})
	return removed
}

func (m *memoryCache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return m.defaultTTL
	}
	return ttl
}
