package messages

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

const maxBodyLen = 4000

var (
	ErrPeerNotFound = errors.New("peer not found")
	ErrSelfMessage  = errors.New("cannot message yourself")
	ErrEmptyBody    = errors.New("message body is required")
	ErrBodyTooLong  = errors.New("message body is too long")
)

type Service struct {
	storage       storage.MessagesStorage
	users         storage.UsersStorage
	notifications storage.NotificationsStorage
}

func NewService(messagesStorage storage.MessagesStorage, users storage.UsersStorage,
	notifications storage.NotificationsStorage) *Service {
	return &Service{
		storage:       messagesStorage,
		users:         users,
		notifications: notifications,
	}
}

// Send delivers a direct message and drops a notification in the recipient's
// inbox.
func (s *Service) Send(ctx context.Context, senderID, peerID uuid.UUID, body string) (*MessageDTO, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if len(body) > maxBodyLen {
		return nil, ErrBodyTooLong
	}
	if senderID == peerID {
		return nil, ErrSelfMessage
	}

	peer, err := s.users.GetUser(ctx, peerID)
	if err != nil {
		return nil, ErrPeerNotFound
	}

	msg := &storage.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: peerID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.storage.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.notifyMessageReceived(ctx, peer.ID, senderID)

	dto := messageToDTO(msg)
	return &dto, nil
}

// ListConversations returns the user's conversation heads, newest first.
func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error) {
	summaries, err := s.storage.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := make([]ConversationDTO, 0, len(summaries))
	for _, summary := range summaries {
		dto := ConversationDTO{
			PeerID:      summary.PeerID,
			LastBody:    summary.LastBody,
			LastAt:      summary.LastAt,
			UnreadCount: summary.UnreadCount,
		}
		if peer, err := s.users.GetUser(ctx, summary.PeerID); err == nil {
			dto.PeerName = peer.Name
		}
		result = append(result, dto)
	}
	return result, nil
}

// ListConversation pages one conversation newest first and marks the peer's
// messages as read.
func (s *Service) ListConversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]MessageDTO, error) {
	if _, err := s.users.GetUser(ctx, peerID); err != nil {
		return nil, ErrPeerNotFound
	}

	msgs, err := s.storage.ListConversation(ctx, userID, peerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}

	if _, err := s.storage.MarkConversationRead(ctx, userID, peerID); err != nil {
		log.Printf("messages: failed to mark conversation %s/%s read: %v", userID, peerID, err)
	}

	result := make([]MessageDTO, 0, len(msgs))
	for i := range msgs {
		result = append(result, messageToDTO(&msgs[i]))
	}
	return result, nil
}

func (s *Service) notifyMessageReceived(ctx context.Context, recipientID, senderID uuid.UUID) {
	senderName := "Someone"
	if sender, err := s.users.GetUser(ctx, senderID); err == nil && sender.Name != "" {
		senderName = sender.Name
	}

	err := s.notifications.CreateNotification(ctx, &storage.Notification{
		ID:        uuid.New(),
		UserID:    recipientID,
		Kind:      "message_received",
		Title:     "New message",
		Body:      fmt.Sprintf("%s sent you a message", senderName),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("messages: failed to create notification for %s: %v", recipientID, err)
	}
}
