package viewsmock

import (
	"context"
	"encoding/json"
	"sync"
)

// Views is a function-backed mock of the view cache. Unset functions behave like an
// always-empty cache.
type Views struct {
	GetFn func(ctx context.Context, key string, v any) (bool, error)
	PutFn func(ctx context.Context, key string, v any) error
}

func (m *Views) Get(ctx context.Context, key string, v any) (bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key, v)
	}
	return false, nil
}

func (m *Views) Put(ctx context.Context, key string, v any) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, v)
	}
	return nil
}

// Memory is a map-backed Views that JSON-encodes like the redis cache does.
type Memory struct {
	Views
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	m := &Memory{data: map[string][]byte{}}
	m.GetFn = func(_ context.Context, key string, v any) (bool, error) {
		m.mu.Lock()
		raw, ok := m.data[key]
		m.mu.Unlock()
		if !ok {
			return false, nil
		}
		return true, json.Unmarshal(raw, v)
	}
	m.PutFn = func(_ context.Context, key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.data[key] = raw
		m.mu.Unlock()
		return nil
	}
	return m
}

// Has reports whether key was written.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// Drop removes key.
func (m *Memory) Drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
