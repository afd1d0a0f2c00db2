package devserver

import (
	"context"
	"errors"
	"sync"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

// ErrNotFound is returned by a Store when no todo has the given id.
var ErrNotFound = errors.New("todo not found")

// Store is the persistence behind the development backend.
type Store interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, title string) (model.Todo, error)
	// Complete flips the completed flag and returns the updated record.
	Complete(ctx context.Context, id int) (model.Todo, error)
	Delete(ctx context.Context, id int) error
	Close() error
}

// MemoryStore keeps todos in insertion order. Ids start at 1 and are never reused.
type MemoryStore struct {
	mu     sync.Mutex
	todos  []model.Todo
	nextID int
}

func NewMemoryStore(seed ...model.Todo) *MemoryStore {
	s := &MemoryStore{nextID: 1}
	for _, t := range seed {
		s.todos = append(s.todos, t)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

func (s *MemoryStore) List(_ context.Context) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, title string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Todo{ID: s.nextID, Title: title}
	s.nextID++
	s.todos = append(s.todos, t)
	return t, nil
}

func (s *MemoryStore) Complete(_ context.Context, id int) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i].Completed = !s.todos[i].Completed
			return s.todos[i], nil
		}
	}
	return model.Todo{}, ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Close() error { return nil }
