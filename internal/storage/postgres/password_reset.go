package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPasswordResetStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresPasswordResetStorage(pool *pgxpool.Pool) *PostgresPasswordResetStorage {
	return &PostgresPasswordResetStorage{pool: pool}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *PostgresPasswordResetStorage) UpsertCode(ctx context.Context, code *storage.PasswordResetCode) error {
	query := `
		INSERT INTO password_reset_codes (email, code_hash, expires_at, attempts, last_sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at,
			attempts = EXCLUDED.attempts,
			last_sent_at = EXCLUDED.last_sent_at
	`

	_, err := s.pool.Exec(ctx, query,
		normalizeEmail(code.Email),
		code.CodeHash,
		code.ExpiresAt,
		code.Attempts,
		code.LastSentAt,
	)

	return err
}

func (s *PostgresPasswordResetStorage) GetCode(ctx context.Context, email string) (*storage.PasswordResetCode, error) {
	query := `
		SELECT email, code_hash, expires_at, attempts, last_sent_at
		FROM password_reset_codes
		WHERE email = $1
	`

	var code storage.PasswordResetCode
	err := s.pool.QueryRow(ctx, query, normalizeEmail(email)).Scan(
		&code.Email,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.Attempts,
		&code.LastSentAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &code, nil
}

func (s *PostgresPasswordResetStorage) DeleteCode(ctx context.Context, email string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM password_reset_codes WHERE email = $1`, normalizeEmail(email))
	return err
}

func (s *PostgresPasswordResetStorage) IncrementAttempts(ctx context.Context, email string) (int, error) {
	query := `
		UPDATE password_reset_codes
		SET attempts = attempts + 1
		WHERE email = $1
		RETURNING attempts
	`

	var attempts int
	err := s.pool.QueryRow(ctx, query, normalizeEmail(email)).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	return attempts, nil
}
