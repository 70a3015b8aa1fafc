package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresProgressStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresProgressStorage(pool *pgxpool.Pool) *PostgresProgressStorage {
	return &PostgresProgressStorage{pool: pool}
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, so the delta
// statements below can run standalone or inside an item transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// applyDeltaUpsertSQL increments the ledger fields in a single statement,
// creating the row at zero first when absent. The increment happens inside
// the database, so concurrent writers cannot lose updates.
const applyDeltaUpsertSQL = `
	INSERT INTO daily_progress
		(id, user_id, date, calories_intake, protein_intake, carbs_intake, fats_intake, calories_burned, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	ON CONFLICT (user_id, date) DO UPDATE SET
		calories_intake = daily_progress.calories_intake + EXCLUDED.calories_intake,
		protein_intake  = daily_progress.protein_intake + EXCLUDED.protein_intake,
		carbs_intake    = daily_progress.carbs_intake + EXCLUDED.carbs_intake,
		fats_intake     = daily_progress.fats_intake + EXCLUDED.fats_intake,
		calories_burned = daily_progress.calories_burned + EXCLUDED.calories_burned,
		updated_at      = EXCLUDED.updated_at
`

// applyDeltaUpdateSQL increments only an existing row. Used on the delete
// path, where an absent row means there is nothing to reverse.
const applyDeltaUpdateSQL = `
	UPDATE daily_progress SET
		calories_intake = calories_intake + $3,
		protein_intake  = protein_intake + $4,
		carbs_intake    = carbs_intake + $5,
		fats_intake     = fats_intake + $6,
		calories_burned = calories_burned + $7,
		updated_at      = $8
	WHERE user_id = $1 AND date = $2
`

func applyDeltaUpsert(ctx context.Context, db execer, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	_, err := db.Exec(ctx, applyDeltaUpsertSQL,
		uuid.New(),
		userID,
		date,
		delta.Calories,
		delta.Protein,
		delta.Carbs,
		delta.Fats,
		delta.Burned,
		time.Now(),
	)
	return err
}

func applyDeltaUpdate(ctx context.Context, db execer, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	_, err := db.Exec(ctx, applyDeltaUpdateSQL,
		userID,
		date,
		delta.Calories,
		delta.Protein,
		delta.Carbs,
		delta.Fats,
		delta.Burned,
		time.Now(),
	)
	return err
}

func (s *PostgresProgressStorage) GetDaily(ctx context.Context, userID uuid.UUID, date string) (*storage.DailyProgress, bool, error) {
	query := `
		SELECT id, user_id, date, calories_intake, protein_intake, carbs_intake, fats_intake,
		       calories_burned, steps_count, water_intake_ml, goal_status, created_at, updated_at
		FROM daily_progress
		WHERE user_id = $1 AND date = $2
	`

	var row storage.DailyProgress
	err := s.pool.QueryRow(ctx, query, userID, date).Scan(
		&row.ID,
		&row.UserID,
		&row.Date,
		&row.CaloriesIntake,
		&row.ProteinIntake,
		&row.CarbsIntake,
		&row.FatsIntake,
		&row.CaloriesBurned,
		&row.StepsCount,
		&row.WaterIntakeMl,
		&row.GoalStatus,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &row, true, nil
}

func (s *PostgresProgressStorage) ApplyDelta(ctx context.Context, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	return applyDeltaUpsert(ctx, s.pool, userID, date, delta)
}

func (s *PostgresProgressStorage) UpsertAncillary(ctx context.Context, userID uuid.UUID, date string, steps *int, waterMl *int, goalStatus *string) (*storage.DailyProgress, error) {
	query := `
		INSERT INTO daily_progress
			(id, user_id, date, steps_count, water_intake_ml, goal_status, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, 0), COALESCE($5, 0), COALESCE($6, ''), $7, $7)
		ON CONFLICT (user_id, date) DO UPDATE SET
			steps_count     = COALESCE($4, daily_progress.steps_count),
			water_intake_ml = COALESCE($5, daily_progress.water_intake_ml),
			goal_status     = COALESCE($6, daily_progress.goal_status),
			updated_at      = $7
		RETURNING id, user_id, date, calories_intake, protein_intake, carbs_intake, fats_intake,
		          calories_burned, steps_count, water_intake_ml, goal_status, created_at, updated_at
	`

	var row storage.DailyProgress
	err := s.pool.QueryRow(ctx, query,
		uuid.New(),
		userID,
		date,
		steps,
		waterMl,
		goalStatus,
		time.Now(),
	).Scan(
		&row.ID,
		&row.UserID,
		&row.Date,
		&row.CaloriesIntake,
		&row.ProteinIntake,
		&row.CarbsIntake,
		&row.FatsIntake,
		&row.CaloriesBurned,
		&row.StepsCount,
		&row.WaterIntakeMl,
		&row.GoalStatus,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (s *PostgresProgressStorage) ListRange(ctx context.Context, userID uuid.UUID, from, to string) ([]storage.DailyProgress, error) {
	query := `
		SELECT id, user_id, date, calories_intake, protein_intake, carbs_intake, fats_intake,
		       calories_burned, steps_count, water_intake_ml, goal_status, created_at, updated_at
		FROM daily_progress
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []storage.DailyProgress{}
	for rows.Next() {
		var row storage.DailyProgress
		err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Date,
			&row.CaloriesIntake,
			&row.ProteinIntake,
			&row.CarbsIntake,
			&row.FatsIntake,
			&row.CaloriesBurned,
			&row.StepsCount,
			&row.WaterIntakeMl,
			&row.GoalStatus,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
