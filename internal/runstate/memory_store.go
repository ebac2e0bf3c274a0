package runstate

import (
	"context"
	"sync"
)

// Store kept in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[Key][]byte
	images map[Key]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[Key][]byte),
		images: make(map[Key]map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	delete(s.images, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (s *MemoryStore) SetImage(_ context.Context, key Key, itemID, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	images, ok := s.images[key]
	if !ok {
		images = make(map[string]string)
		s.images[key] = images
	}

	images[itemID] = image
	return nil
}

func (s *MemoryStore) Images(_ context.Context, key Key) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.images[key]))
	for id, image := range s.images[key] {
		out[id] = image
	}

	return out, nil
}
