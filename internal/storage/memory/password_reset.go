package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/fitfuel/fitfuel-server/internal/storage"
)

// PasswordResetMemoryStorage implements storage.PasswordResetStorage
type PasswordResetMemoryStorage struct {
	mu    sync.Mutex
	codes map[string]storage.PasswordResetCode // key: lowercased email
}

func NewPasswordResetMemoryStorage() *PasswordResetMemoryStorage {
	return &PasswordResetMemoryStorage{
		codes: make(map[string]storage.PasswordResetCode),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *PasswordResetMemoryStorage) UpsertCode(ctx context.Context, code *storage.PasswordResetCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[emailKey(code.Email)] = *code
	return nil
}

func (s *PasswordResetMemoryStorage) GetCode(ctx context.Context, email string) (*storage.PasswordResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, exists := s.codes[emailKey(email)]
	if !exists {
		return nil, ErrNotFound
	}
	return &code, nil
}

func (s *PasswordResetMemoryStorage) DeleteCode(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, emailKey(email))
	return nil
}

func (s *PasswordResetMemoryStorage) IncrementAttempts(ctx context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(email)
	code, exists := s.codes[key]
	if !exists {
		return 0, ErrNotFound
	}
	code.Attempts++
	s.codes[key] = code
	return code.Attempts, nil
}
