package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time // zero = never
}

func (it item[V]) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// Memory is a process-local Cache. Expired entries are dropped lazily on
// read and periodically by a background sweep until Close is called.
type Memory[V any] struct {
	opts   options
	items  map[string]item[V]
	done   chan struct{}
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewMemory creates an in-memory cache. Call Close to stop the sweep goroutine.
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		opts:  newOptions(opts),
		items: make(map[string]item[V]),
		done:  make(chan struct{}),
	}

	if m.opts.janitor > 0 {
		m.wg.Add(1)
		go m.sweep(m.opts.janitor)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.RLock()
	it, ok := m.items[m.opts.key(key)]
	m.mu.RUnlock()

	if !ok || it.expired(time.Now()) {
		return zero, ErrNotFound
	}
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	it := item[V]{value: value}
	if ttl = m.opts.ttl(ttl); ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	m.items[m.opts.key(key)] = it
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, m.opts.key(key))
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the sweep goroutine. Further writes return ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}

func (m *Memory[V]) sweep(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, it := range m.items {
				if it.expired(now) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
