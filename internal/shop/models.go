package shop

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	StockCount  int       `json:"stock_count"`
	HasImage    bool      `json:"has_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductDTO `json:"products"`
}

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	StockCount  int    `json:"stock_count"`
}

// UpdateProductRequest patches a product; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	PriceCents  *int64  `json:"price_cents"`
	StockCount  *int    `json:"stock_count"`
}

type UpsertCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CartItemDTO struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

type CartResponse struct {
	Items      []CartItemDTO `json:"items"`
	TotalCents int64         `json:"total_cents"`
}

type AddWishlistItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

type WishlistItemDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	PriceCents  int64     `json:"price_cents"`
	AddedAt     time.Time `json:"added_at"`
}

type WishlistResponse struct {
	Items []WishlistItemDTO `json:"items"`
}

type OrderItemDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
}

type OrderDTO struct {
	ID         uuid.UUID      `json:"id"`
	Status     string         `json:"status"`
	TotalCents int64          `json:"total_cents"`
	Items      []OrderItemDTO `json:"items,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderDTO `json:"orders"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func productToDTO(p *storage.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		StockCount:  p.StockCount,
		HasImage:    p.ImageKey != nil,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func orderToDTO(o *storage.Order, items []storage.OrderItem) OrderDTO {
	dto := OrderDTO{
		ID:         o.ID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
	}
	for _, item := range items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}
	return dto
}
