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

type PostgresDietPlansStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresDietPlansStorage(pool *pgxpool.Pool) *PostgresDietPlansStorage {
	return &PostgresDietPlansStorage{pool: pool}
}

const dietItemColumns = `id, plan_id, user_id, date, food_id, meal_slot, quantity_gm, status, plan_type, created_by_id, created_at, updated_at`

func scanDietItem(row pgx.Row) (storage.DietItem, error) {
	var item storage.DietItem
	err := row.Scan(
		&item.ID,
		&item.PlanID,
		&item.UserID,
		&item.Date,
		&item.FoodID,
		&item.MealSlot,
		&item.QuantityGm,
		&item.Status,
		&item.PlanType,
		&item.CreatedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresDietPlansStorage) CreatePlan(ctx context.Context, plan *storage.DietPlan, items []storage.DietItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	planQuery := `
		INSERT INTO diet_plans (id, user_id, date, title, plan_type, created_at, updated_at)
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
		return fmt.Errorf("failed to insert diet plan: %w", err)
	}

	itemQuery := `
		INSERT INTO diet_items (` + dietItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, item := range items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.PlanID,
			item.UserID,
			item.Date,
			item.FoodID,
			item.MealSlot,
			item.QuantityGm,
			item.Status,
			item.PlanType,
			item.CreatedByID,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert diet item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresDietPlansStorage) GetPlan(ctx context.Context, id uuid.UUID) (*storage.DietPlan, error) {
	query := `
		SELECT id, user_id, date, title, plan_type, created_at, updated_at
		FROM diet_plans
		WHERE id = $1
	`

	var plan storage.DietPlan
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

func (s *PostgresDietPlansStorage) GetPlanByDate(ctx context.Context, userID uuid.UUID, date string) (*storage.DietPlan, bool, error) {
	query := `
		SELECT id, user_id, date, title, plan_type, created_at, updated_at
		FROM diet_plans
		WHERE user_id = $1 AND date = $2
	`

	var plan storage.DietPlan
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

func (s *PostgresDietPlansStorage) CreateItem(ctx context.Context, item *storage.DietItem) error {
	query := `
		INSERT INTO diet_items (` + dietItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		item.ID,
		item.PlanID,
		item.UserID,
		item.Date,
		item.FoodID,
		item.MealSlot,
		item.QuantityGm,
		item.Status,
		item.PlanType,
		item.CreatedByID,
		item.CreatedAt,
		item.UpdatedAt,
	)

	return err
}

func (s *PostgresDietPlansStorage) GetItem(ctx context.Context, id uuid.UUID) (*storage.DietItem, error) {
	query := `SELECT ` + dietItemColumns + ` FROM diet_items WHERE id = $1`

	item, err := scanDietItem(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *PostgresDietPlansStorage) ListItems(ctx context.Context, planID uuid.UUID) ([]storage.DietItem, error) {
	query := `
		SELECT ` + dietItemColumns + `
		FROM diet_items
		WHERE plan_id = $1
		ORDER BY created_at ASC, id ASC
	`

	return s.queryItems(ctx, query, planID)
}

func (s *PostgresDietPlansStorage) ListItemsByDate(ctx context.Context, userID uuid.UUID, date string) ([]storage.DietItem, error) {
	query := `
		SELECT ` + dietItemColumns + `
		FROM diet_items
		WHERE user_id = $1 AND date = $2
		ORDER BY created_at ASC, id ASC
	`

	return s.queryItems(ctx, query, userID, date)
}

func (s *PostgresDietPlansStorage) queryItems(ctx context.Context, query string, args ...any) ([]storage.DietItem, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []storage.DietItem{}
	for rows.Next() {
		item, err := scanDietItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateItemApplyingDelta writes the item and the progress increment in one
// transaction, so the ledger can never observe one without the other.
func (s *PostgresDietPlansStorage) UpdateItemApplyingDelta(ctx context.Context, item *storage.DietItem, delta storage.ProgressDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	item.UpdatedAt = time.Now()

	query := `
		UPDATE diet_items
		SET quantity_gm = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, item.ID, item.QuantityGm, item.Status, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update diet item: %w", err)
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

// DeleteItemApplyingDelta removes the item and reverses its contribution in
// one transaction. The reversal is an update of an existing progress row
// only; if no row exists there is nothing to reverse.
func (s *PostgresDietPlansStorage) DeleteItemApplyingDelta(ctx context.Context, id uuid.UUID, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `DELETE FROM diet_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete diet item: %w", err)
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
