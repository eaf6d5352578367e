package slot

import (
	"context"
	"sync"
)

type entry struct {
	payload []byte
	version int64
}

// Memory is an in-process Store, the backend for tests and for running
// without any persistence at all.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]entry
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, name string) ([]byte, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.slots[name]
	if !ok {
		return nil, 0, nil
	}
	payload := make([]byte, len(e.payload))
	copy(payload, e.payload)
	return payload, e.version, nil
}

func (m *Memory) Put(_ context.Context, name string, payload []byte, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if e, ok := m.slots[name]; ok {
		current = e.version
	}
	if version != AnyVersion && version != current {
		return ErrConflict
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.slots[name] = entry{payload: stored, version: current + 1}
	return nil
}

var _ Store = (*Memory)(nil)
