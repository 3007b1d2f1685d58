package draftstore

import (
	"context"
	"slices"
	"sync"
)

// MemorySlot keeps drafts in process memory. Used for local development and tests.
type MemorySlot struct {
	mu    sync.Mutex
	items map[Key][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{items: make(map[Key][]byte)}
}

func (m *MemorySlot) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	if !ok {
		return nil, ErrEmpty
	}
	return slices.Clone(b), nil
}

func (m *MemorySlot) Set(_ context.Context, key Key, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = slices.Clone(payload)
	return nil
}

func (m *MemorySlot) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len returns the number of stored drafts.
func (m *MemorySlot) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
