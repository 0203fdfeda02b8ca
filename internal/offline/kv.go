package offline

import (
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by a KV when a write would exceed its capacity.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is the persistent key-value storage the local queue is kept in.
// Get reports ok=false for an absent key.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryKV is an in-memory KV with an optional capacity in bytes.
type MemoryKV struct {
	mu       sync.Mutex
	data     map[string]string
	capacity int
}

var _ KV = (*MemoryKV)(nil)

// NewMemoryKV returns an empty store. A capacity <= 0 means unlimited.
func NewMemoryKV(capacity int) *MemoryKV {
	return &MemoryKV{data: make(map[string]string), capacity: capacity}
}

// Get returns the value stored under key.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capacity > 0 {
		used := 0
		for k, v := range m.data {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > m.capacity {
			return ErrQuotaExceeded
		}
	}
	m.data[key] = value
	return nil
}
