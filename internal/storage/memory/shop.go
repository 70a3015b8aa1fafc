package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// ShopMemoryStorage implements storage.ShopStorage
type ShopMemoryStorage struct {
	mu         sync.RWMutex
	products   map[uuid.UUID]storage.Product
	cart       map[string]storage.CartItem     // key: userID:productID
	wishlist   map[string]storage.WishlistItem // key: userID:productID
	orders     map[uuid.UUID]storage.Order
	orderItems map[uuid.UUID][]storage.OrderItem
}

func NewShopMemoryStorage() *ShopMemoryStorage {
	return &ShopMemoryStorage{
		products:   make(map[uuid.UUID]storage.Product),
		cart:       make(map[string]storage.CartItem),
		wishlist:   make(map[string]storage.WishlistItem),
		orders:     make(map[uuid.UUID]storage.Order),
		orderItems: make(map[uuid.UUID][]storage.OrderItem),
	}
}

func userProductKey(userID, productID uuid.UUID) string {
	return userID.String() + ":" + productID.String()
}

func (s *ShopMemoryStorage) CreateProduct(ctx context.Context, product *storage.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = *product
	return nil
}

func (s *ShopMemoryStorage) GetProduct(ctx context.Context, id uuid.UUID) (*storage.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *ShopMemoryStorage) ListProducts(ctx context.Context, query, category string, limit, offset int) ([]storage.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var result []storage.Product
	for _, p := range s.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, limit, offset), nil
}

func (s *ShopMemoryStorage) UpdateProduct(ctx context.Context, product *storage.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; !exists {
		return ErrNotFound
	}
	s.products[product.ID] = *product
	return nil
}

func (s *ShopMemoryStorage) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ShopMemoryStorage) UpsertCartItem(ctx context.Context, item *storage.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userProductKey(item.UserID, item.ProductID)
	if existing, exists := s.cart[key]; exists {
		existing.Quantity = item.Quantity
		existing.UpdatedAt = item.UpdatedAt
		s.cart[key] = existing
		*item = existing
		return nil
	}
	s.cart[key] = *item
	return nil
}

func (s *ShopMemoryStorage) ListCartItems(ctx context.Context, userID uuid.UUID) ([]storage.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.CartItem
	for _, item := range s.cart {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *ShopMemoryStorage) DeleteCartItem(ctx context.Context, userID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userProductKey(userID, productID)
	if _, exists := s.cart[key]; !exists {
		return ErrNotFound
	}
	delete(s.cart, key)
	return nil
}

func (s *ShopMemoryStorage) ClearCart(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, item := range s.cart {
		if item.UserID == userID {
			delete(s.cart, key)
		}
	}
	return nil
}

func (s *ShopMemoryStorage) AddWishlistItem(ctx context.Context, item *storage.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userProductKey(item.UserID, item.ProductID)
	if _, exists := s.wishlist[key]; exists {
		return nil // already saved, adding again is a no-op
	}
	s.wishlist[key] = *item
	return nil
}

func (s *ShopMemoryStorage) ListWishlistItems(ctx context.Context, userID uuid.UUID) ([]storage.WishlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.WishlistItem
	for _, item := range s.wishlist {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *ShopMemoryStorage) DeleteWishlistItem(ctx context.Context, userID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userProductKey(userID, productID)
	if _, exists := s.wishlist[key]; !exists {
		return ErrNotFound
	}
	delete(s.wishlist, key)
	return nil
}

func (s *ShopMemoryStorage) CreateOrder(ctx context.Context, order *storage.Order, items []storage.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate stock for every line before mutating anything.
	for _, item := range items {
		p, exists := s.products[item.ProductID]
		if !exists {
			return ErrNotFound
		}
		if p.StockCount < item.Quantity {
			return storage.ErrInsufficientStock
		}
	}

	for _, item := range items {
		p := s.products[item.ProductID]
		p.StockCount -= item.Quantity
		s.products[item.ProductID] = p
	}

	s.orders[order.ID] = *order
	s.orderItems[order.ID] = append([]storage.OrderItem(nil), items...)
	return nil
}

func (s *ShopMemoryStorage) GetOrder(ctx context.Context, id uuid.UUID) (*storage.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *ShopMemoryStorage) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]storage.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, limit, offset), nil
}

func (s *ShopMemoryStorage) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]storage.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, exists := s.orderItems[orderID]
	if !exists {
		return nil, nil
	}
	return append([]storage.OrderItem(nil), items...), nil
}

func (s *ShopMemoryStorage) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.orders[id]
	if !exists {
		return ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return nil
}
