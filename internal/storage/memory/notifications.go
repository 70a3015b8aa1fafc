package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// NotificationsMemoryStorage implements storage.NotificationsStorage
type NotificationsMemoryStorage struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]storage.Notification
}

func NewNotificationsMemoryStorage() *NotificationsMemoryStorage {
	return &NotificationsMemoryStorage{
		rows: make(map[uuid.UUID]storage.Notification),
	}
}

func (s *NotificationsMemoryStorage) CreateNotification(ctx context.Context, n *storage.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[n.ID] = *n
	return nil
}

func (s *NotificationsMemoryStorage) ListNotifications(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]storage.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.Notification
	for _, n := range s.rows {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.ReadAt != nil {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, limit, offset), nil
}

func (s *NotificationsMemoryStorage) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.rows {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *NotificationsMemoryStorage) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	marked := 0
	for _, id := range ids {
		n, exists := s.rows[id]
		if !exists || n.UserID != userID || n.ReadAt != nil {
			continue
		}
		n.ReadAt = &now
		s.rows[id] = n
		marked++
	}
	return marked, nil
}

func (s *NotificationsMemoryStorage) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	marked := 0
	for id, n := range s.rows {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			s.rows[id] = n
			marked++
		}
	}
	return marked, nil
}
