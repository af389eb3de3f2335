package mock

import (
	"context"
	"sync"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
)

// MemoryStore keeps users in insertion order in memory.
type MemoryStore struct {
	mu    sync.Mutex
	users []Usuario
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, u fixtures.User) (Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return Usuario{}, ErrEmailTaken
		}
	}
	rec := Usuario{User: u, ID: newID()}
	s.users = append(s.users, rec)
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Usuario, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return Usuario{}, false, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Usuario(nil), s.users...), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
