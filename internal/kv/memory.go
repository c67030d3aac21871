package kv

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is a session-scoped tier that lives as long as the process.
type Memory struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64
}

// NewMemory creates an empty memory tier. quota caps the total value size
// in bytes; zero disables the cap.
func NewMemory(quota int64) *Memory {
	return &Memory{data: map[string][]byte{}, quota: quota}
}

// Name implements Tier.
func (m *Memory) Name() string { return "memory" }

// Get implements Tier. The returned slice is a copy.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set implements Tier.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		var used int64
		for k, v := range m.data {
			if k != key {
				used += int64(len(v))
			}
		}
		if used+int64(len(value)) > m.quota {
			return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
		}
	}
	m.data[key] = slices.Clone(value)
	return nil
}

// Delete implements Tier.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close implements Tier.
func (m *Memory) Close() error { return nil }
