package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// ProfilesMemoryStorage implements storage.ProfilesStorage
type ProfilesMemoryStorage struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]storage.Profile
}

func NewProfilesMemoryStorage() *ProfilesMemoryStorage {
	return &ProfilesMemoryStorage{
		profiles: make(map[uuid.UUID]storage.Profile),
	}
}

func (s *ProfilesMemoryStorage) GetProfile(ctx context.Context, userID uuid.UUID) (*storage.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.profiles[userID]
	if !exists {
		return nil, errors.New("profile not found")
	}
	return &p, nil
}

func (s *ProfilesMemoryStorage) UpsertProfile(ctx context.Context, profile *storage.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.profiles[profile.UserID]; exists {
		profile.CreatedAt = existing.CreatedAt
	}
	s.profiles[profile.UserID] = *profile
	return nil
}
