package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/fitfuel/fitfuel-server/internal/blob"
	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/google/uuid"
)

type testEnv struct {
	service       *Service
	shop          *memory.ShopMemoryStorage
	users         *memory.UsersMemoryStorage
	notifications *memory.NotificationsMemoryStorage
	blobs         *blob.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		UploadMaxMB:       1,
		UploadAllowedMime: "image/png,image/jpeg",
	}
	env := &testEnv{
		shop:          memory.NewShopMemoryStorage(),
		users:         memory.NewUsersMemoryStorage(),
		notifications: memory.NewNotificationsMemoryStorage(),
		blobs:         blob.NewMemoryStore(),
	}
	env.service = NewService(cfg, env.shop, env.users, env.notifications, env.blobs, nil)
	return env
}

func (e *testEnv) seedProduct(t *testing.T, name string, priceCents int64, stock int) *ProductDTO {
	t.Helper()

	product, err := e.service.CreateProduct(context.Background(), CreateProductRequest{
		Name:       name,
		Category:   "supplements",
		PriceCents: priceCents,
		StockCount: stock,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func TestProductCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.seedProduct(t, "Whey Protein", 2999, 10)
	if created.HasImage {
		t.Fatal("new product must not report an image")
	}

	newPrice := int64(2499)
	updated, err := env.service.UpdateProduct(ctx, created.ID, UpdateProductRequest{PriceCents: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceCents != 2499 || updated.Name != "Whey Protein" {
		t.Fatalf("unexpected product after patch: %+v", updated)
	}

	if err := env.service.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.service.GetProduct(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestProductValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateProductRequest
		wantErr error
	}{
		{"empty name", CreateProductRequest{Name: "  ", PriceCents: 100}, ErrInvalidName},
		{"negative price", CreateProductRequest{Name: "Bar", PriceCents: -1}, ErrInvalidPrice},
		{"negative stock", CreateProductRequest{Name: "Bar", PriceCents: 100, StockCount: -5}, ErrInvalidStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.service.CreateProduct(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUploadProductImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.seedProduct(t, "Shaker", 999, 5)

	updated, err := env.service.UploadProductImage(ctx, product.ID, []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !updated.HasImage {
		t.Fatal("expected has_image after upload")
	}

	url, data, contentType, err := env.service.ProductImage(ctx, product.ID)
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if url != "" {
		t.Fatalf("memory store must not presign, got %q", url)
	}
	if string(data) != "png-bytes" || contentType != "image/png" {
		t.Fatalf("unexpected image payload %q (%s)", data, contentType)
	}

	if _, err := env.service.UploadProductImage(ctx, product.ID, []byte("gif"), "image/gif"); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for disallowed type, got %v", err)
	}

	big := make([]byte, 2*1024*1024)
	if _, err := env.service.UploadProductImage(ctx, product.ID, big, "image/png"); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	whey := env.seedProduct(t, "Whey Protein", 2999, 10)
	bar := env.seedProduct(t, "Protein Bar", 250, 50)

	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: whey.ID, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: uuid.New(), Quantity: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}

	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: whey.ID, Quantity: 2}); err != nil {
		t.Fatalf("add whey: %v", err)
	}
	cart, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: bar.ID, Quantity: 4})
	if err != nil {
		t.Fatalf("add bars: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(cart.Items))
	}
	if cart.TotalCents != 2*2999+4*250 {
		t.Fatalf("unexpected cart total %d", cart.TotalCents)
	}

	// Upsert with a new quantity replaces the line, not adds to it.
	cart, err = env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: whey.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("requantify whey: %v", err)
	}
	if cart.TotalCents != 1*2999+4*250 {
		t.Fatalf("unexpected total after requantify: %d", cart.TotalCents)
	}

	if err := env.service.RemoveCartItem(ctx, userID, bar.ID); err != nil {
		t.Fatalf("remove bars: %v", err)
	}
	cart, err = env.service.GetCart(ctx, userID)
	if err != nil || len(cart.Items) != 1 {
		t.Fatalf("expected 1 line after removal, got %+v (%v)", cart, err)
	}
}

func TestWishlistFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	product := env.seedProduct(t, "Resistance Band", 1500, 20)

	if err := env.service.AddWishlistItem(ctx, userID, product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Adding twice stays a single entry.
	if err := env.service.AddWishlistItem(ctx, userID, product.ID); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	wishlist, err := env.service.GetWishlist(ctx, userID)
	if err != nil || len(wishlist.Items) != 1 {
		t.Fatalf("expected 1 wishlist item, got %+v (%v)", wishlist, err)
	}
	if wishlist.Items[0].ProductName != "Resistance Band" {
		t.Fatalf("unexpected item: %+v", wishlist.Items[0])
	}

	if err := env.service.RemoveWishlistItem(ctx, userID, product.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := env.service.RemoveWishlistItem(ctx, userID, product.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	whey := env.seedProduct(t, "Whey Protein", 2999, 10)
	bar := env.seedProduct(t, "Protein Bar", 250, 50)

	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: whey.ID, Quantity: 2}); err != nil {
		t.Fatalf("cart: %v", err)
	}
	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: bar.ID, Quantity: 4}); err != nil {
		t.Fatalf("cart: %v", err)
	}

	order, err := env.service.CreateOrder(ctx, userID)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if order.Status != "placed" {
		t.Fatalf("expected status placed, got %s", order.Status)
	}
	if order.TotalCents != 2*2999+4*250 {
		t.Fatalf("unexpected order total %d", order.TotalCents)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(order.Items))
	}

	// Stock was decremented and the cart cleared.
	p, err := env.service.GetProduct(ctx, whey.ID)
	if err != nil || p.StockCount != 8 {
		t.Fatalf("expected stock 8, got %+v (%v)", p, err)
	}
	cart, err := env.service.GetCart(ctx, userID)
	if err != nil || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after order, got %+v (%v)", cart, err)
	}

	count, err := env.notifications.UnreadCount(ctx, userID)
	if err != nil || count != 1 {
		t.Fatalf("expected one order notification, got %d (%v)", count, err)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	product := env.seedProduct(t, "Creatine", 1999, 1)

	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: product.ID, Quantity: 3}); err != nil {
		t.Fatalf("cart: %v", err)
	}

	if _, err := env.service.CreateOrder(ctx, userID); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Nothing was decremented and the cart survives.
	p, _ := env.service.GetProduct(ctx, product.ID)
	if p.StockCount != 1 {
		t.Fatalf("stock must be untouched, got %d", p.StockCount)
	}
	cart, _ := env.service.GetCart(ctx, userID)
	if len(cart.Items) != 1 {
		t.Fatalf("cart must survive a failed order, got %+v", cart)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.service.CreateOrder(context.Background(), uuid.New()); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestOrderOwnershipAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()
	product := env.seedProduct(t, "Yoga Mat", 3500, 5)

	if _, err := env.service.UpsertCartItem(ctx, owner, UpsertCartItemRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("cart: %v", err)
	}
	order, err := env.service.CreateOrder(ctx, owner)
	if err != nil {
		t.Fatalf("order: %v", err)
	}

	if _, err := env.service.GetOrder(ctx, stranger, order.ID, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger must not see the order, got %v", err)
	}
	if _, err := env.service.GetOrder(ctx, stranger, order.ID, true); err != nil {
		t.Fatalf("admin must see any order, got %v", err)
	}

	if _, err := env.service.UpdateOrderStatus(ctx, order.ID, "teleported"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	updated, err := env.service.UpdateOrderStatus(ctx, order.ID, "shipped")
	if err != nil || updated.Status != "shipped" {
		t.Fatalf("expected shipped, got %+v (%v)", updated, err)
	}
}

func TestOrderConfirmationEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sent := &captureSender{}
	env.service.mail = sent

	userID := uuid.New()
	if err := env.users.CreateUser(ctx, &storage.User{
		ID:    userID,
		Email: "buyer@example.com",
		Role:  "user",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	product := env.seedProduct(t, "Jump Rope", 1200, 3)
	if _, err := env.service.UpsertCartItem(ctx, userID, UpsertCartItemRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("cart: %v", err)
	}
	if _, err := env.service.CreateOrder(ctx, userID); err != nil {
		t.Fatalf("order: %v", err)
	}

	if sent.to != "buyer@example.com" {
		t.Fatalf("expected confirmation email to the buyer, got %q", sent.to)
	}
}

type captureSender struct {
	to      string
	subject string
	body    string
}

func (s *captureSender) Send(to, subject, textBody string) error {
	s.to = to
	s.subject = subject
	s.body = textBody
	return nil
}
