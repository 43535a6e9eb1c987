package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store used in single-operator offline mode and in
// tests. Collections spring into existence on first write.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string][]byte)}
}

func (m *Memory) GetAll(_ context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.collections[collection]
	out := make([][]byte, 0, len(records))
	for _, doc := range records {
		out = append(out, clone(doc))
	}
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (m *Memory) Create(_ context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.collections[collection]
	if records == nil {
		records = make(map[string][]byte)
		m.collections[collection] = records
	}
	if _, exists := records[id]; exists {
		return fmt.Errorf("record %s already exists in %s", id, collection)
	}
	records[id] = clone(doc)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.collections[collection]
	if _, exists := records[id]; !exists {
		return ErrNotFound
	}
	records[id] = clone(doc)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.collections[collection]
	if _, exists := records[id]; !exists {
		return ErrNotFound
	}
	delete(records, id)
	return nil
}

func clone(doc []byte) []byte {
	out := make([]byte, len(doc))
	copy(out, doc)
	return out
}
