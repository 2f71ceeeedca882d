package store

import (
	"context"
	"fmt"
	"sync"

	"okkstats/pkg/platform/sentinel"
)

// MemoryRemote is an in-process Remote. Every Write is broadcast to all
// watchers, including the writer's own, which reproduces the echo behavior
// of a real shared store.
type MemoryRemote struct {
	mu       sync.Mutex
	payload  []byte
	watchers []chan []byte
	writeErr error
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{}
}

func (m *MemoryRemote) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, fmt.Errorf("settings document: %w", sentinel.ErrNotFound)
	}
	return append([]byte(nil), m.payload...), nil
}

func (m *MemoryRemote) Write(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.payload = append([]byte(nil), payload...)
	for _, ch := range m.watchers {
		select {
		case ch <- append([]byte(nil), payload...):
		default:
		}
	}
	return nil
}

func (m *MemoryRemote) Watch(ctx context.Context) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	m.mu.Lock()
	m.watchers = append(m.watchers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		for i, w := range m.watchers {
			if w == ch {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// FailWrites makes subsequent writes return err; pass nil to heal.
func (m *MemoryRemote) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Current returns the last written payload.
func (m *MemoryRemote) Current() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.payload...)
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, fmt.Errorf("personal settings: %w", sentinel.ErrNotFound)
	}
	return append([]byte(nil), m.payload...), nil
}

func (m *MemoryCache) Save(payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte(nil), payload...)
	return nil
}
