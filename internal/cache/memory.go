package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	val     []byte
	expires time.Time
}

// Memory is an in-process TTL map. Expired entries are dropped lazily on read and in bulk once
// the map grows past sweepAt.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
	sweepAt int
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memEntry{}, now: time.Now, sweepAt: 1024}
}

// WithClock replaces the time source. Tests use it to step past TTLs.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.val...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	if len(m.entries) >= m.sweepAt {
		m.sweepLocked()
		if len(m.entries) >= m.sweepAt {
			m.sweepAt *= 2
		}
	}
	return nil
}

func (m *Memory) InvalidatePattern(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}
