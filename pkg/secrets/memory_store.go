package secrets

import (
	"context"
	"strings"
	"sync"

	iface "github.com/goliatone/go-credentials/pkg/interfaces/secrets"
)

// MemoryStore is a simple in-memory implementation of a secret record Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]iface.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]iface.Record)}
}

func (m *MemoryStore) Put(_ context.Context, rec iface.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[rec.Key+"|"+rec.Version] = rec
	return nil
}

func (m *MemoryStore) GetLatest(_ context.Context, key string) (iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest iface.Record
	var found bool
	for _, rec := range m.items {
		if rec.Key == key {
			if !found || rec.Version > latest.Version {
				latest = rec
				found = true
			}
		}
	}
	if !found {
		return iface.Record{}, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) GetVersion(_ context.Context, key, version string) (iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.items[key+"|"+version]; ok {
		return rec, nil
	}
	return iface.Record{}, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rec := range m.items {
		if rec.Key == key {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, keyPrefix string) ([]iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []iface.Record
	for _, rec := range m.items {
		if keyPrefix == "" || strings.HasPrefix(rec.Key, keyPrefix) {
			out = append(out, rec)
		}
	}
	return out, nil
}
