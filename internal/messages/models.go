package messages

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

type MessageDTO struct {
	ID        uuid.UUID  `json:"id"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type SendMessageRequest struct {
	Body string `json:"body"`
}

type ConversationDTO struct {
	PeerID      uuid.UUID `json:"peer_id"`
	PeerName    string    `json:"peer_name,omitempty"`
	LastBody    string    `json:"last_body"`
	LastAt      time.Time `json:"last_at"`
	UnreadCount int       `json:"unread_count"`
}

type ConversationListResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}

type MessageListResponse struct {
	Messages []MessageDTO `json:"messages"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func messageToDTO(m *storage.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}
