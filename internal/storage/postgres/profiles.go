package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresProfilesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresProfilesStorage(pool *pgxpool.Pool) *PostgresProfilesStorage {
	return &PostgresProfilesStorage{pool: pool}
}

func (s *PostgresProfilesStorage) GetProfile(ctx context.Context, userID uuid.UUID) (*storage.Profile, error) {
	query := `
		SELECT user_id, height_cm, weight_kg, date_of_birth, gender, activity_level, goal, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p storage.Profile
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.HeightCm,
		&p.WeightKg,
		&p.DateOfBirth,
		&p.Gender,
		&p.ActivityLevel,
		&p.Goal,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *PostgresProfilesStorage) UpsertProfile(ctx context.Context, profile *storage.Profile) error {
	now := time.Now()
	profile.UpdatedAt = now

	query := `
		INSERT INTO profiles (user_id, height_cm, weight_kg, date_of_birth, gender, activity_level, goal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	return s.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.HeightCm,
		profile.WeightKg,
		profile.DateOfBirth,
		profile.Gender,
		profile.ActivityLevel,
		profile.Goal,
		now,
	).Scan(&profile.CreatedAt)
}
