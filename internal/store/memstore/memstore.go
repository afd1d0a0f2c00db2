// Package memstore is an in-memory key-value store with the same shape as jsonstore.
package memstore

import (
	"errors"
	"sync"
)

// ErrUnavailable is what a Store returns once it has been marked unavailable.
var ErrUnavailable = errors.New("store unavailable")

type Store struct {
	mu          sync.Mutex
	data        map[string][]byte
	unavailable bool
	sets        int
}

func New() *Store {
	return &Store{data: map[string][]byte{}}
}

// SetUnavailable makes every later Get and Set fail, like storage in a
// restricted context.
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return nil, false, ErrUnavailable
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return ErrUnavailable
	}
	s.data[key] = append([]byte(nil), value...)
	s.sets++
	return nil
}

// Sets counts successful writes.
func (s *Store) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}
