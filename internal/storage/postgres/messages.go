package postgres

import (
	"context"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMessagesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMessagesStorage(pool *pgxpool.Pool) *PostgresMessagesStorage {
	return &PostgresMessagesStorage{pool: pool}
}

func (s *PostgresMessagesStorage) CreateMessage(ctx context.Context, msg *storage.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, body, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		msg.ID,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
		msg.CreatedAt,
		msg.ReadAt,
	)

	return err
}

func (s *PostgresMessagesStorage) ListConversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]storage.Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, body, created_at, read_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := s.pool.Query(ctx, query, userID, peerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []storage.Message{}
	for rows.Next() {
		var m storage.Message
		err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Body,
			&m.CreatedAt,
			&m.ReadAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (s *PostgresMessagesStorage) ListConversations(ctx context.Context, userID uuid.UUID) ([]storage.ConversationSummary, error) {
	// One row per peer: the latest message plus the count of unread messages
	// addressed to the requesting user.
	query := `
		SELECT peer_id, body, created_at, unread_count
		FROM (
			SELECT DISTINCT ON (peer_id)
				CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS peer_id,
				body,
				created_at,
				(SELECT count(*) FROM messages u
				 WHERE u.recipient_id = $1
				   AND u.sender_id = CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END
				   AND u.read_at IS NULL) AS unread_count
			FROM messages m
			WHERE sender_id = $1 OR recipient_id = $1
			ORDER BY peer_id, created_at DESC
		) latest
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []storage.ConversationSummary{}
	for rows.Next() {
		var c storage.ConversationSummary
		if err := rows.Scan(&c.PeerID, &c.LastBody, &c.LastAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, c)
	}
	return summaries, rows.Err()
}

func (s *PostgresMessagesStorage) MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int, error) {
	query := `
		UPDATE messages
		SET read_at = $3
		WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL
	`

	result, err := s.pool.Exec(ctx, query, userID, peerID, time.Now())
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
