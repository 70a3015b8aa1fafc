package shop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/blob"
	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/mailer"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidName       = errors.New("product name is required")
	ErrInvalidPrice      = errors.New("price must be zero or positive")
	ErrInvalidStock      = errors.New("stock count must be zero or positive")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidImage      = errors.New("unsupported image type")
	ErrImageTooLarge     = errors.New("image exceeds the upload size limit")
	ErrNoImage           = errors.New("product has no image")
)

var validOrderStatuses = map[string]bool{
	"placed":    true,
	"shipped":   true,
	"delivered": true,
	"cancelled": true,
}

type Service struct {
	cfg           *config.Config
	storage       storage.ShopStorage
	users         storage.UsersStorage
	notifications storage.NotificationsStorage
	blobs         blob.Store
	mail          mailer.Sender
}

// NewService wires the shop over its storage, the blob store for product
// images, and the notification/mail channels used on order placement. mail may
// be nil, in which case no confirmation email is sent.
func NewService(cfg *config.Config, shopStorage storage.ShopStorage, users storage.UsersStorage,
	notifications storage.NotificationsStorage, blobs blob.Store, mail mailer.Sender) *Service {
	return &Service{
		cfg:           cfg,
		storage:       shopStorage,
		users:         users,
		notifications: notifications,
		blobs:         blobs,
		mail:          mail,
	}
}

func (s *Service) ListProducts(ctx context.Context, query, category string, limit, offset int) ([]ProductDTO, error) {
	products, err := s.storage.ListProducts(ctx, query, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := make([]ProductDTO, 0, len(products))
	for i := range products {
		result = append(result, productToDTO(&products[i]))
	}
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	dto := productToDTO(product)
	return &dto, nil
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if req.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}
	if req.StockCount < 0 {
		return nil, ErrInvalidStock
	}

	now := time.Now().UTC()
	product := &storage.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		PriceCents:  req.PriceCents,
		StockCount:  req.StockCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	dto := productToDTO(product)
	return &dto, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, ErrInvalidPrice
		}
		product.PriceCents = *req.PriceCents
	}
	if req.StockCount != nil {
		if *req.StockCount < 0 {
			return nil, ErrInvalidStock
		}
		product.StockCount = *req.StockCount
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	dto := productToDTO(product)
	return &dto, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.storage.DeleteProduct(ctx, id); err != nil {
		return ErrNotFound
	}

	if product.ImageKey != nil {
		if err := s.blobs.DeleteObject(ctx, *product.ImageKey); err != nil {
			log.Printf("shop: failed to delete image %s: %v", *product.ImageKey, err)
		}
	}
	return nil
}

// UploadProductImage stores the image bytes under a product-scoped key and
// records the key on the product. Re-uploading replaces the previous object.
func (s *Service) UploadProductImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*ProductDTO, error) {
	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if !s.mimeAllowed(contentType) {
		return nil, ErrInvalidImage
	}
	if maxBytes := int64(s.cfg.UploadMaxMB) * 1024 * 1024; maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	key := "products/" + id.String()
	if _, err := s.blobs.PutObject(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	product.ImageKey = &key
	product.UpdatedAt = time.Now().UTC()
	if err := s.storage.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	dto := productToDTO(product)
	return &dto, nil
}

// ProductImage returns a presigned URL when the blob store supports signing,
// otherwise the raw bytes with their content type.
func (s *Service) ProductImage(ctx context.Context, id uuid.UUID) (url string, data []byte, contentType string, err error) {
	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return "", nil, "", ErrNotFound
	}
	if product.ImageKey == nil {
		return "", nil, "", ErrNoImage
	}

	url, err = s.blobs.PresignGet(ctx, *product.ImageKey, s.cfg.Blob.S3.PresignTTLSeconds)
	if err == nil && url != "" {
		return url, nil, "", nil
	}

	data, err = s.blobs.GetObject(ctx, *product.ImageKey)
	if err != nil {
		return "", nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	contentType = "application/octet-stream"
	if mem, ok := s.blobs.(*blob.MemoryStore); ok {
		if ct, found := mem.ContentType(*product.ImageKey); found {
			contentType = ct
		}
	}
	return "", data, contentType, nil
}

func (s *Service) mimeAllowed(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return false
	}
	for _, allowed := range strings.Split(s.cfg.UploadAllowedMime, ",") {
		if contentType == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

func (s *Service) UpsertCartItem(ctx context.Context, userID uuid.UUID, req UpsertCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.storage.GetProduct(ctx, req.ProductID); err != nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	item := &storage.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.UpsertCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *Service) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	items, err := s.storage.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	resp := &CartResponse{Items: make([]CartItemDTO, 0, len(items))}
	for _, item := range items {
		product, err := s.storage.GetProduct(ctx, item.ProductID)
		if err != nil {
			// Product removed from the catalogue after it was carted.
			continue
		}
		subtotal := product.PriceCents * int64(item.Quantity)
		resp.Items = append(resp.Items, CartItemDTO{
			ProductID:     product.ID,
			ProductName:   product.Name,
			PriceCents:    product.PriceCents,
			Quantity:      item.Quantity,
			SubtotalCents: subtotal,
		})
		resp.TotalCents += subtotal
	}
	return resp, nil
}

func (s *Service) RemoveCartItem(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.storage.DeleteCartItem(ctx, userID, productID); err != nil {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.storage.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Service) AddWishlistItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	if _, err := s.storage.GetProduct(ctx, productID); err != nil {
		return ErrNotFound
	}

	item := &storage.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.AddWishlistItem(ctx, item); err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (s *Service) GetWishlist(ctx context.Context, userID uuid.UUID) (*WishlistResponse, error) {
	items, err := s.storage.ListWishlistItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	resp := &WishlistResponse{Items: make([]WishlistItemDTO, 0, len(items))}
	for _, item := range items {
		product, err := s.storage.GetProduct(ctx, item.ProductID)
		if err != nil {
			continue
		}
		resp.Items = append(resp.Items, WishlistItemDTO{
			ProductID:   product.ID,
			ProductName: product.Name,
			PriceCents:  product.PriceCents,
			AddedAt:     item.CreatedAt,
		})
	}
	return resp, nil
}

func (s *Service) RemoveWishlistItem(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.storage.DeleteWishlistItem(ctx, userID, productID); err != nil {
		return ErrNotFound
	}
	return nil
}

// CreateOrder turns the current cart into an order. Prices are snapshotted at
// order time; stock is checked and decremented in one transaction. The cart is
// cleared only after the order commits.
func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	cartItems, err := s.storage.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now().UTC()
	order := &storage.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    "placed",
		CreatedAt: now,
		UpdatedAt: now,
	}

	var orderItems []storage.OrderItem
	for _, cartItem := range cartItems {
		product, err := s.storage.GetProduct(ctx, cartItem.ProductID)
		if err != nil {
			continue
		}
		orderItems = append(orderItems, storage.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ProductID:  product.ID,
			Quantity:   cartItem.Quantity,
			PriceCents: product.PriceCents,
		})
		order.TotalCents += product.PriceCents * int64(cartItem.Quantity)
	}
	if len(orderItems) == 0 {
		return nil, ErrCartEmpty
	}

	if err := s.storage.CreateOrder(ctx, order, orderItems); err != nil {
		if errors.Is(err, storage.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.storage.ClearCart(ctx, userID); err != nil {
		log.Printf("shop: failed to clear cart for %s after order %s: %v", userID, order.ID, err)
	}

	s.notifyOrderPlaced(ctx, userID, order)

	dto := orderToDTO(order, orderItems)
	return &dto, nil
}

func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]OrderDTO, error) {
	orders, err := s.storage.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		result = append(result, orderToDTO(&orders[i], nil))
	}
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, isAdmin bool) (*OrderDTO, error) {
	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil || (order.UserID != userID && !isAdmin) {
		return nil, ErrNotFound
	}

	items, err := s.storage.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	dto := orderToDTO(order, items)
	return &dto, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !validOrderStatuses[status] {
		return nil, ErrInvalidStatus
	}

	if _, err := s.storage.GetOrder(ctx, orderID); err != nil {
		return nil, ErrNotFound
	}
	if err := s.storage.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	dto := orderToDTO(order, nil)
	return &dto, nil
}

func (s *Service) notifyOrderPlaced(ctx context.Context, userID uuid.UUID, order *storage.Order) {
	body := fmt.Sprintf("Order %s placed, total %.2f", order.ID, float64(order.TotalCents)/100)
	err := s.notifications.CreateNotification(ctx, &storage.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      "order_placed",
		Title:     "Order placed",
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("shop: failed to create notification for %s: %v", userID, err)
	}

	if s.mail == nil {
		return
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		log.Printf("shop: failed to load user %s for confirmation email: %v", userID, err)
		return
	}
	if err := s.mail.Send(user.Email, "Your order is placed", body); err != nil {
		log.Printf("shop: failed to send confirmation email to %s: %v", user.Email, err)
	}
}
