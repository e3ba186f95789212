package holidays

import (
	"context"
	"sync"
)

// MemoryStore keeps holidays in process memory.
type MemoryStore struct {
	mu          sync.Mutex
	items       []Holiday
	initialized bool
}

// NewMemoryStore returns an uninitialized store, so the registry seeds it.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns an initialized store holding items.
func NewMemoryStoreWith(items []Holiday) *MemoryStore {
	return &MemoryStore{items: append([]Holiday(nil), items...), initialized: true}
}

func (s *MemoryStore) Load(ctx context.Context) ([]Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrUninitialized
	}
	return append([]Holiday(nil), s.items...), nil
}

func (s *MemoryStore) Init(ctx context.Context, seed []Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Holiday(nil), seed...)
	s.initialized = true
	return nil
}

func (s *MemoryStore) Insert(ctx context.Context, h Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing == h {
			return ErrDuplicate
		}
	}
	s.items = append(s.items, h)
	s.initialized = true
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, h Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing == h {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
