package shop

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fitfuel/fitfuel-server/internal/userctx"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleListProducts handles GET /v1/products
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	query, category, limit, offset := listParams(r)

	products, err := h.service.ListProducts(r.Context(), query, category, limit, offset)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list products")
		return
	}

	h.sendJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// HandleGetProduct handles GET /v1/products/{id}
func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	h.sendJSON(w, http.StatusOK, product)
}

// HandleCreateProduct handles POST /v1/products (admin only)
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create product")
		return
	}

	h.sendJSON(w, http.StatusCreated, product)
}

// HandleUpdateProduct handles PATCH /v1/products/{id} (admin only)
func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update product")
		return
	}

	h.sendJSON(w, http.StatusOK, product)
}

// HandleDeleteProduct handles DELETE /v1/products/{id} (admin only)
func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadProductImage handles POST /v1/products/{id}/image (admin only).
// The request body is the raw image; Content-Type names its MIME type.
func (h *Handler) HandleUploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	maxBytes := int64(h.service.cfg.UploadMaxMB) * 1024 * 1024
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes+1))
	if err != nil {
		h.sendError(w, http.StatusRequestEntityTooLarge, "image_too_large", "Image exceeds the upload size limit")
		return
	}

	product, err := h.service.UploadProductImage(r.Context(), id, data, r.Header.Get("Content-Type"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to upload image")
		return
	}

	h.sendJSON(w, http.StatusOK, product)
}

// HandleGetProductImage handles GET /v1/products/{id}/image. With S3 wired the
// client is redirected to a presigned URL, otherwise the bytes are served
// directly.
func (h *Handler) HandleGetProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	url, data, contentType, err := h.service.ProductImage(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load image")
		return
	}

	if url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleGetCart handles GET /v1/cart
func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load cart")
		return
	}

	h.sendJSON(w, http.StatusOK, cart)
}

// HandleUpsertCartItem handles PUT /v1/cart/items
func (h *Handler) HandleUpsertCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req UpsertCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	cart, err := h.service.UpsertCartItem(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update cart")
		return
	}

	h.sendJSON(w, http.StatusOK, cart)
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/{productID}
func (h *Handler) HandleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	productID, ok := pathID(r, "productID")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	if err := h.service.RemoveCartItem(r.Context(), userID, productID); err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Cart item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleClearCart handles DELETE /v1/cart
func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if err := h.service.ClearCart(r.Context(), userID); err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetWishlist handles GET /v1/wishlist
func (h *Handler) HandleGetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	wishlist, err := h.service.GetWishlist(r.Context(), userID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load wishlist")
		return
	}

	h.sendJSON(w, http.StatusOK, wishlist)
}

// HandleAddWishlistItem handles POST /v1/wishlist/items
func (h *Handler) HandleAddWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req AddWishlistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	if err := h.service.AddWishlistItem(r.Context(), userID, req.ProductID); err != nil {
		h.writeServiceError(w, err, "Failed to add wishlist item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveWishlistItem handles DELETE /v1/wishlist/items/{productID}
func (h *Handler) HandleRemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	productID, ok := pathID(r, "productID")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid product id")
		return
	}

	if err := h.service.RemoveWishlistItem(r.Context(), userID, productID); err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Wishlist item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateOrder handles POST /v1/orders
func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create order")
		return
	}

	h.sendJSON(w, http.StatusCreated, order)
}

// HandleListOrders handles GET /v1/orders
func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	_, _, limit, offset := listParams(r)
	orders, err := h.service.ListOrders(r.Context(), userID, limit, offset)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list orders")
		return
	}

	h.sendJSON(w, http.StatusOK, OrderListResponse{Orders: orders})
}

// HandleGetOrder handles GET /v1/orders/{id}
func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid order id")
		return
	}

	order, err := h.service.GetOrder(r.Context(), userID, id, userctx.IsAdmin(r.Context()))
	if err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}

	h.sendJSON(w, http.StatusOK, order)
}

// HandleUpdateOrderStatus handles PATCH /v1/orders/{id}/status (admin only)
func (h *Handler) HandleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update order status")
		return
	}

	h.sendJSON(w, http.StatusOK, order)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoImage):
		h.sendError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		h.sendError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, ErrImageTooLarge):
		h.sendError(w, http.StatusRequestEntityTooLarge, "image_too_large", err.Error())
	case errors.Is(err, ErrInvalidImage):
		h.sendError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidStock),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrCartEmpty),
		errors.Is(err, ErrInvalidStatus):
		h.sendError(w, http.StatusBadRequest, "invalid_entry", err.Error())
	default:
		h.sendError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func currentUserID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := userctx.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func listParams(r *http.Request) (query, category string, limit, offset int) {
	q := r.URL.Query()
	query = q.Get("q")
	category = q.Get("category")

	limit = defaultListLimit
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return query, category, limit, offset
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
