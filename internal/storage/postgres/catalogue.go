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

type PostgresCatalogueStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogueStorage(pool *pgxpool.Pool) *PostgresCatalogueStorage {
	return &PostgresCatalogueStorage{pool: pool}
}

func (s *PostgresCatalogueStorage) CreateFood(ctx context.Context, food *storage.Food) error {
	if food.ID == uuid.Nil {
		food.ID = uuid.New()
	}

	now := time.Now()
	food.CreatedAt = now
	food.UpdatedAt = now

	query := `
		INSERT INTO foods (id, name, calories, protein, carbs, fats, serving_size_gm, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		food.ID,
		food.Name,
		food.Calories,
		food.Protein,
		food.Carbs,
		food.Fats,
		food.ServingSizeGm,
		food.CreatedAt,
		food.UpdatedAt,
	)

	return err
}

func (s *PostgresCatalogueStorage) GetFood(ctx context.Context, id uuid.UUID) (*storage.Food, error) {
	query := `
		SELECT id, name, calories, protein, carbs, fats, serving_size_gm, created_at, updated_at
		FROM foods
		WHERE id = $1
	`

	return s.scanFood(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresCatalogueStorage) GetFoodByName(ctx context.Context, name string) (*storage.Food, error) {
	query := `
		SELECT id, name, calories, protein, carbs, fats, serving_size_gm, created_at, updated_at
		FROM foods
		WHERE lower(name) = lower($1)
	`

	return s.scanFood(s.pool.QueryRow(ctx, query, name))
}

func (s *PostgresCatalogueStorage) scanFood(row pgx.Row) (*storage.Food, error) {
	var f storage.Food
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Calories,
		&f.Protein,
		&f.Carbs,
		&f.Fats,
		&f.ServingSizeGm,
		&f.CreatedAt,
		&f.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &f, nil
}

func (s *PostgresCatalogueStorage) ListFoods(ctx context.Context, query string, limit, offset int) ([]storage.Food, error) {
	sql := `
		SELECT id, name, calories, protein, carbs, fats, serving_size_gm, created_at, updated_at
		FROM foods
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, sql, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	foods := []storage.Food{}
	for rows.Next() {
		var f storage.Food
		err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.Calories,
			&f.Protein,
			&f.Carbs,
			&f.Fats,
			&f.ServingSizeGm,
			&f.CreatedAt,
			&f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}

	return foods, rows.Err()
}

func (s *PostgresCatalogueStorage) UpdateFood(ctx context.Context, food *storage.Food) error {
	food.UpdatedAt = time.Now()

	query := `
		UPDATE foods
		SET name = $2, calories = $3, protein = $4, carbs = $5, fats = $6, serving_size_gm = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		food.ID,
		food.Name,
		food.Calories,
		food.Protein,
		food.Carbs,
		food.Fats,
		food.ServingSizeGm,
		food.UpdatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresCatalogueStorage) DeleteFood(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresCatalogueStorage) CreateActivity(ctx context.Context, activity *storage.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	query := `
		INSERT INTO activities (id, name, calories_per_kg, duration_min, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		activity.ID,
		activity.Name,
		activity.CaloriesPerKg,
		activity.DurationMin,
		activity.CreatedAt,
		activity.UpdatedAt,
	)

	return err
}

func (s *PostgresCatalogueStorage) GetActivity(ctx context.Context, id uuid.UUID) (*storage.Activity, error) {
	query := `
		SELECT id, name, calories_per_kg, duration_min, created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	return s.scanActivity(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresCatalogueStorage) GetActivityByName(ctx context.Context, name string) (*storage.Activity, error) {
	query := `
		SELECT id, name, calories_per_kg, duration_min, created_at, updated_at
		FROM activities
		WHERE lower(name) = lower($1)
	`

	return s.scanActivity(s.pool.QueryRow(ctx, query, name))
}

func (s *PostgresCatalogueStorage) scanActivity(row pgx.Row) (*storage.Activity, error) {
	var a storage.Activity
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.CaloriesPerKg,
		&a.DurationMin,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *PostgresCatalogueStorage) ListActivities(ctx context.Context, query string, limit, offset int) ([]storage.Activity, error) {
	sql := `
		SELECT id, name, calories_per_kg, duration_min, created_at, updated_at
		FROM activities
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, sql, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []storage.Activity{}
	for rows.Next() {
		var a storage.Activity
		err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.CaloriesPerKg,
			&a.DurationMin,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

func (s *PostgresCatalogueStorage) UpdateActivity(ctx context.Context, activity *storage.Activity) error {
	activity.UpdatedAt = time.Now()

	query := `
		UPDATE activities
		SET name = $2, calories_per_kg = $3, duration_min = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		activity.ID,
		activity.Name,
		activity.CaloriesPerKg,
		activity.DurationMin,
		activity.UpdatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresCatalogueStorage) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
