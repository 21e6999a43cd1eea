package storage

import (
	"context"
	"sync"

	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/repository"
)

// memoryStore keeps session state in process memory. Useful for tests and for
// hosts that do not want credentials touching disk.
type memoryStore struct {
	mu    sync.Mutex
	token *entity.AuthToken
	user  *entity.User
}

// NewMemoryStore creates an empty in-memory SessionStorage.
func NewMemoryStore() repository.SessionStorage {
	return &memoryStore{}
}

func (s *memoryStore) GetToken(ctx context.Context) (*entity.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return nil, repository.ErrTokenNotFound
	}

	return s.token, nil
}

func (s *memoryStore) GetUser(ctx context.Context) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, repository.ErrUserNotFound
	}

	return s.user, nil
}

func (s *memoryStore) StoreToken(ctx context.Context, token *entity.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	return nil
}

func (s *memoryStore) StoreUser(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user

	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
	s.user = nil

	return nil
}
