package postgres

import (
	"context"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresNotificationsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationsStorage(pool *pgxpool.Pool) *PostgresNotificationsStorage {
	return &PostgresNotificationsStorage{pool: pool}
}

func (s *PostgresNotificationsStorage) CreateNotification(ctx context.Context, n *storage.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Kind,
		n.Title,
		n.Body,
		n.CreatedAt,
		n.ReadAt,
	)

	return err
}

func (s *PostgresNotificationsStorage) ListNotifications(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]storage.Notification, error) {
	query := `
		SELECT id, user_id, kind, title, body, created_at, read_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := s.pool.Query(ctx, query, userID, onlyUnread, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []storage.Notification{}
	for rows.Next() {
		var n storage.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Kind,
			&n.Title,
			&n.Body,
			&n.CreatedAt,
			&n.ReadAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (s *PostgresNotificationsStorage) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`

	var count int
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *PostgresNotificationsStorage) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	query := `
		UPDATE notifications
		SET read_at = $3
		WHERE user_id = $1 AND id = ANY($2) AND read_at IS NULL
	`

	result, err := s.pool.Exec(ctx, query, userID, ids, time.Now())
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}

func (s *PostgresNotificationsStorage) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		UPDATE notifications
		SET read_at = $2
		WHERE user_id = $1 AND read_at IS NULL
	`

	result, err := s.pool.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
