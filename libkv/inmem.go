package libkv

import (
	"context"
	"encoding/json"
	"sync"
)

// InMem is an in-memory Manager for single-process use. It does not touch
// the network or disk; state is lost when the process exits.
type InMem struct {
	mu     sync.RWMutex
	closed bool
	data   map[string]json.RawMessage
}

// NewInMem returns a new in-memory Manager. Use for local single-process
// mode and tests.
func NewInMem() *InMem {
	return &InMem{data: make(map[string]json.RawMessage)}
}

func (m *InMem) Executor(ctx context.Context) (KV, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	return m, nil
}

func (m *InMem) Get(ctx context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers can't mutate the stored value.
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, nil
}

func (m *InMem) Set(ctx context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *InMem) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *InMem) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, ErrManagerClosed
	}
	_, ok := m.data[key]
	return ok, nil
}

func (m *InMem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}
