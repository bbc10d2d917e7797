package repository

import (
	"context"
	"sync"
)

type bucket struct {
	order []string
	docs  map[string][]byte
}

// MemoryBackend keeps documents in process memory.  It is the default
// backend and the one used by tests.
type MemoryBackend struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{buckets: make(map[string]*bucket)}
}

func (m *MemoryBackend) bucket(collection string) *bucket {
	b, ok := m.buckets[collection]
	if !ok {
		b = &bucket{docs: make(map[string][]byte)}
		m.buckets[collection] = b
	}
	return b
}

func clone(body []byte) []byte { return append([]byte(nil), body...) }

func (m *MemoryBackend) Put(_ context.Context, collection, id string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucket(collection)
	if _, exists := b.docs[id]; exists {
		return ErrConflict
	}
	b.docs[id] = clone(body)
	b.order = append(b.order, id)
	return nil
}

func (m *MemoryBackend) Replace(_ context.Context, collection, id string, body []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucket(collection)
	if _, exists := b.docs[id]; !exists {
		return false, nil
	}
	b.docs[id] = clone(body)
	return true, nil
}

func (m *MemoryBackend) Get(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.buckets[collection]; ok {
		if body, ok := b.docs[id]; ok {
			return clone(body), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryBackend) List(_ context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[collection]
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, clone(b.docs[id]))
	}
	return out, nil
}

func (m *MemoryBackend) Delete(_ context.Context, collection, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[collection]
	if !ok {
		return false, nil
	}
	if _, exists := b.docs[id]; !exists {
		return false, nil
	}
	delete(b.docs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true, nil
}
