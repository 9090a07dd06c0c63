package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded snapshots in process memory. Used in tests and
// when no REDIS_URL is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return New(), nil
	}
	c, _ := Decode(data)
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, c *Cart) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a key with non-JSON bytes. Test helper.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	s.data[key] = []byte("{not json")
	s.mu.Unlock()
}
