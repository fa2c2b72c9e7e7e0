package cas

import (
	"slices"
	"sync"
)

type MemoryCAS struct {
	mu   sync.RWMutex
	data map[Hash][]byte
	refs map[string]Hash
}

func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{
		data: make(map[Hash][]byte),
		refs: make(map[string]Hash),
	}
}

func (m *MemoryCAS) Has(hash Hash) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[hash]
	return ok
}

func (m *MemoryCAS) Put(data []byte) (Hash, error) {
	h := HashBytes(data)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[h]; !ok {
		m.data[h] = slices.Clone(data)
	}
	return h, nil
}

func (m *MemoryCAS) Get(hash Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MemoryCAS) SetRef(name string, hash Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[name] = hash
	return nil
}

func (m *MemoryCAS) Ref(name string) (Hash, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.refs[name]
	return h, ok, nil
}

// Len is the number of stored entries.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
