package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var ErrNothingToMark = errors.New("ids are required unless all is set")

type Service struct {
	storage storage.NotificationsStorage
}

func NewService(notificationsStorage storage.NotificationsStorage) *Service {
	return &Service{storage: notificationsStorage}
}

// List returns the user's inbox newest first, together with the unread count
// over the whole inbox (not just the returned page).
func (s *Service) List(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) (*NotificationListResponse, error) {
	rows, err := s.storage.ListNotifications(ctx, userID, onlyUnread, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.storage.UnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread: %w", err)
	}

	resp := &NotificationListResponse{
		Notifications: make([]NotificationDTO, 0, len(rows)),
		UnreadCount:   unread,
	}
	for i := range rows {
		resp.Notifications = append(resp.Notifications, toDTO(&rows[i]))
	}
	return resp, nil
}

// MarkRead marks the given notifications read. Ids belonging to other users
// are ignored, not reported.
func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, req MarkReadRequest) (int, error) {
	if req.All {
		marked, err := s.storage.MarkAllRead(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to mark all read: %w", err)
		}
		return marked, nil
	}

	if len(req.IDs) == 0 {
		return 0, ErrNothingToMark
	}
	marked, err := s.storage.MarkRead(ctx, userID, req.IDs)
	if err != nil {
		return 0, fmt.Errorf("failed to mark read: %w", err)
	}
	return marked, nil
}
