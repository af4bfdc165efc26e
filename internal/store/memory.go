package store

import (
	"encoding/json"
	"sync"
)

// Memory is a map-backed Store.  It backs tests and can run the whole
// service without a database, at the cost of losing state on restart.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Put(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return ErrSerialization
	}
	s.mu.Lock()
	s.m[key] = b
	s.mu.Unlock()
	return nil
}

func (s *Memory) Get(key string, out any) bool {
	s.mu.RLock()
	b, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

func (s *Memory) Clear() error {
	s.mu.Lock()
	s.m = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites key with text that is not valid JSON.  It exists so
// tests can exercise the corrupt-snapshot path.
func (s *Memory) Corrupt(key string) {
	s.mu.Lock()
	s.m[key] = []byte("{not json")
	s.mu.Unlock()
}
