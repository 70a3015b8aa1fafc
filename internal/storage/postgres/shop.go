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

var ErrInsufficientStock = storage.ErrInsufficientStock

type PostgresShopStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresShopStorage(pool *pgxpool.Pool) *PostgresShopStorage {
	return &PostgresShopStorage{pool: pool}
}

func (s *PostgresShopStorage) CreateProduct(ctx context.Context, product *storage.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, category, price_cents, stock_count, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.PriceCents,
		product.StockCount,
		product.ImageKey,
		product.CreatedAt,
		product.UpdatedAt,
	)

	return err
}

func (s *PostgresShopStorage) GetProduct(ctx context.Context, id uuid.UUID) (*storage.Product, error) {
	query := `
		SELECT id, name, description, category, price_cents, stock_count, image_key, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p storage.Product
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.PriceCents,
		&p.StockCount,
		&p.ImageKey,
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

func (s *PostgresShopStorage) ListProducts(ctx context.Context, query, category string, limit, offset int) ([]storage.Product, error) {
	sql := `
		SELECT id, name, description, category, price_cents, stock_count, image_key, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := s.pool.Query(ctx, sql, query, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []storage.Product{}
	for rows.Next() {
		var p storage.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.PriceCents,
			&p.StockCount,
			&p.ImageKey,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (s *PostgresShopStorage) UpdateProduct(ctx context.Context, product *storage.Product) error {
	product.UpdatedAt = time.Now()

	query := `
		UPDATE products
		SET name = $2, description = $3, category = $4, price_cents = $5, stock_count = $6, image_key = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.PriceCents,
		product.StockCount,
		product.ImageKey,
		product.UpdatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresShopStorage) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresShopStorage) UpsertCartItem(ctx context.Context, item *storage.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	return s.pool.QueryRow(ctx, query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		now,
	).Scan(&item.ID, &item.CreatedAt)
}

func (s *PostgresShopStorage) ListCartItems(ctx context.Context, userID uuid.UUID) ([]storage.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []storage.CartItem{}
	for rows.Next() {
		var item storage.CartItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *PostgresShopStorage) DeleteCartItem(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresShopStorage) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (s *PostgresShopStorage) AddWishlistItem(ctx context.Context, item *storage.WishlistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()

	query := `
		INSERT INTO wishlist_items (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, item.ID, item.UserID, item.ProductID, item.CreatedAt)
	return err
}

func (s *PostgresShopStorage) ListWishlistItems(ctx context.Context, userID uuid.UUID) ([]storage.WishlistItem, error) {
	query := `
		SELECT id, user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []storage.WishlistItem{}
	for rows.Next() {
		var item storage.WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *PostgresShopStorage) DeleteWishlistItem(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateOrder writes the order, its items and the stock decrements in one
// transaction. The guarded UPDATE fails the whole order when any line would
// take stock below zero.
func (s *PostgresShopStorage) CreateOrder(ctx context.Context, order *storage.Order, items []storage.OrderItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stockQuery := `
		UPDATE products
		SET stock_count = stock_count - $2, updated_at = $3
		WHERE id = $1 AND stock_count >= $2
	`

	now := time.Now()
	for _, item := range items {
		result, err := tx.Exec(ctx, stockQuery, item.ProductID, item.Quantity, now)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrInsufficientStock
		}
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID,
		order.UserID,
		order.Status,
		order.TotalCents,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price_cents)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.PriceCents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresShopStorage) GetOrder(ctx context.Context, id uuid.UUID) (*storage.Order, error) {
	query := `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o storage.Order
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalCents,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (s *PostgresShopStorage) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]storage.Order, error) {
	query := `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []storage.Order{}
	for rows.Next() {
		var o storage.Order
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.TotalCents,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (s *PostgresShopStorage) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]storage.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price_cents
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []storage.OrderItem{}
	for rows.Next() {
		var item storage.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *PostgresShopStorage) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
