// Package memstore provides an in-process types.Storage. It stands in for
// per-tab session storage: contents vanish with the process.
package memstore

import (
	"sort"
	"sync"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

var _ types.Storage = (*Store)(nil)

// Store is a mutex-guarded map.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the value stored under key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, types.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Remove deletes key. Removing an absent key succeeds.
func (s *Store) Remove(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns every stored key in ascending order.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
