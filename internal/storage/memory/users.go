package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// UsersMemoryStorage implements storage.UsersStorage
type UsersMemoryStorage struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]storage.User
	byEmail map[string]uuid.UUID
}

func NewUsersMemoryStorage() *UsersMemoryStorage {
	return &UsersMemoryStorage{
		users:   make(map[uuid.UUID]storage.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *UsersMemoryStorage) CreateUser(ctx context.Context, user *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return errors.New("email already registered")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.users[user.ID] = *user
	s.byEmail[email] = user.ID
	return nil
}

func (s *UsersMemoryStorage) GetUser(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

func (s *UsersMemoryStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, errors.New("user not found")
	}
	u := s.users[id]
	return &u, nil
}

func (s *UsersMemoryStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists {
		return errors.New("user not found")
	}

	// Email is immutable here; only mutable fields are copied over.
	existing.Name = user.Name
	existing.PasswordHash = user.PasswordHash
	existing.Role = user.Role
	existing.UpdatedAt = user.UpdatedAt
	s.users[user.ID] = existing
	return nil
}
