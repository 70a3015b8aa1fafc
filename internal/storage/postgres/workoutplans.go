package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresWorkoutPlansStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresWorkoutPlansStorage(pool *pgxpool.Pool) *PostgresWorkoutPlansStorage {
	return &PostgresWorkoutPlansStorage{pool: pool}
}

const workoutItemColumns = `id, plan_id, user_id, date, activity_id, time_slot, duration_min, status, plan_type, created_by_id, created_at, updated_at`

func scanWorkoutItem(row pgx.Row) (storage.WorkoutItem, error) {
	var item storage.WorkoutItem
	err := row.Scan(
		&item.ID,
		&item.PlanID,
		&item.UserID,
		&item.Date,
		&item.ActivityID,
		&item.TimeSlot,
		&item.DurationMin,
		&item.Status,
		&item.PlanType,
		&item.CreatedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresWorkoutPlansStorage) CreatePlan(ctx context.Context, plan *storage.WorkoutPlan, items []storage.WorkoutItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	planQuery := `
		INSERT INTO workout_plans (id, user_id, date, title, plan_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, planQuery,
		plan.ID,
		plan.UserID,
		plan.Date,
		plan.Title,
		plan.PlanType,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workout plan: %w", err)
	}

	itemQuery := `
		INSERT INTO workout_items (` + workoutItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, item := range items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.PlanID,
			item.UserID,
			item.Date,
			item.ActivityID,
			item.TimeSlot,
			item.DurationMin,
			item.Status,
			item.PlanType,
			item.CreatedByID,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert workout item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresWorkoutPlansStorage) GetPlan(ctx context.Context, id uuid.UUID) (*storage.WorkoutPlan, error) {
	query := `
		SELECT id, user_id, date, title, plan_type, created_at, updated_at
		FROM workout_plans
		WHERE id = $1
	`

	var plan storage.WorkoutPlan
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Date,
		&plan.Title,
		&plan.PlanType,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (s *PostgresWorkoutPlansStorage) GetPlanByDate(ctx context.Context, userID uuid.UUID, date string) (*storage.WorkoutPlan, bool, error) {
	query := `
		SELECT id, user_id, date, title, plan_type, created_at, updated_at
		FROM workout_plans
		WHERE user_id = $1 AND date = $2
	`

	var plan storage.WorkoutPlan
	err := s.pool.QueryRow(ctx, query, userID, date).Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Date,
		&plan.Title,
		&plan.PlanType,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &plan, true, nil
}

func (s *PostgresWorkoutPlansStorage) CreateItem(ctx context.Context, item *storage.WorkoutItem) error {
	query := `
		INSERT INTO workout_items (` + workoutItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		item.ID,
		item.PlanID,
		item.UserID,
		item.Date,
		item.ActivityID,
		item.TimeSlot,
		item.DurationMin,
		item.Status,
		item.PlanType,
		item.CreatedByID,
		item.CreatedAt,
		item.UpdatedAt,
	)

	return err
}

func (s *PostgresWorkoutPlansStorage) GetItem(ctx context.Context, id uuid.UUID) (*storage.WorkoutItem, error) {
	query := `SELECT ` + workoutItemColumns + ` FROM workout_items WHERE id = $1`

	item, err := scanWorkoutItem(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *PostgresWorkoutPlansStorage) ListItems(ctx context.Context, planID uuid.UUID) ([]storage.WorkoutItem, error) {
	query := `
		SELECT ` + workoutItemColumns + `
		FROM workout_items
		WHERE plan_id = $1
		ORDER BY created_at ASC, id ASC
	`

	return s.queryItems(ctx, query, planID)
}

func (s *PostgresWorkoutPlansStorage) ListItemsByDate(ctx context.Context, userID uuid.UUID, date string) ([]storage.WorkoutItem, error) {
	query := `
		SELECT ` + workoutItemColumns + `
		FROM workout_items
		WHERE user_id = $1 AND date = $2
		ORDER BY created_at ASC, id ASC
	`

	return s.queryItems(ctx, query, userID, date)
}

func (s *PostgresWorkoutPlansStorage) queryItems(ctx context.Context, query string, args ...any) ([]storage.WorkoutItem, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []storage.WorkoutItem{}
	for rows.Next() {
		item, err := scanWorkoutItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *PostgresWorkoutPlansStorage) UpdateItemApplyingDelta(ctx context.Context, item *storage.WorkoutItem, delta storage.ProgressDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	item.UpdatedAt = time.Now()

	query := `
		UPDATE workout_items
		SET duration_min = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, item.ID, item.DurationMin, item.Status, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update workout item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if !delta.IsZero() {
		if err := applyDeltaUpsert(ctx, tx, item.UserID, item.Date, delta); err != nil {
			return fmt.Errorf("failed to apply progress delta: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresWorkoutPlansStorage) DeleteItemApplyingDelta(ctx context.Context, id uuid.UUID, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `DELETE FROM workout_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workout item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if !delta.IsZero() {
		if err := applyDeltaUpdate(ctx, tx, userID, date, delta); err != nil {
			return fmt.Errorf("failed to reverse progress delta: %w", err)
		}
	}

	return tx.Commit(ctx)
}
