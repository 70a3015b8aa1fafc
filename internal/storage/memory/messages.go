package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// MessagesMemoryStorage implements storage.MessagesStorage
type MessagesMemoryStorage struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]storage.Message
}

func NewMessagesMemoryStorage() *MessagesMemoryStorage {
	return &MessagesMemoryStorage{
		messages: make(map[uuid.UUID]storage.Message),
	}
}

func (s *MessagesMemoryStorage) CreateMessage(ctx context.Context, msg *storage.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ID] = *msg
	return nil
}

func (s *MessagesMemoryStorage) ListConversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]storage.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.Message
	for _, m := range s.messages {
		if (m.SenderID == userID && m.RecipientID == peerID) ||
			(m.SenderID == peerID && m.RecipientID == userID) {
			result = append(result, m)
		}
	}
	// Newest first, like the API pages them.
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, limit, offset), nil
}

func (s *MessagesMemoryStorage) ListConversations(ctx context.Context, userID uuid.UUID) ([]storage.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[uuid.UUID]storage.Message)
	unread := make(map[uuid.UUID]int)
	for _, m := range s.messages {
		var peer uuid.UUID
		switch {
		case m.SenderID == userID:
			peer = m.RecipientID
		case m.RecipientID == userID:
			peer = m.SenderID
		default:
			continue
		}
		if cur, exists := latest[peer]; !exists || m.CreatedAt.After(cur.CreatedAt) {
			latest[peer] = m
		}
		if m.RecipientID == userID && m.ReadAt == nil {
			unread[peer]++
		}
	}

	result := make([]storage.ConversationSummary, 0, len(latest))
	for peer, m := range latest {
		result = append(result, storage.ConversationSummary{
			PeerID:      peer,
			LastBody:    m.Body,
			LastAt:      m.CreatedAt,
			UnreadCount: unread[peer],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastAt.After(result[j].LastAt) })
	return result, nil
}

func (s *MessagesMemoryStorage) MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	marked := 0
	for id, m := range s.messages {
		if m.RecipientID == userID && m.SenderID == peerID && m.ReadAt == nil {
			m.ReadAt = &now
			s.messages[id] = m
			marked++
		}
	}
	return marked, nil
}
