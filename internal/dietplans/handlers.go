package dietplans

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/userctx"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreatePlan handles POST /v1/diet-plans
func (h *Handler) HandleCreatePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, plan)
}

// HandleGetPlan handles GET /v1/diet-plans?date=YYYY-MM-DD
func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	plan, err := h.service.GetPlanForDate(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, plan)
}

// HandleAddItem handles POST /v1/diet-plans/{id}/items
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	planID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid plan id")
		return
	}

	var req NewItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	item, err := h.service.AddItem(r.Context(), userID, planID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, item)
}

// HandleUpdateItem handles PATCH /v1/diet-items/{id}
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid item id")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	item, err := h.service.UpdateItem(r.Context(), userID, itemID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, item)
}

// HandleDeleteItem handles DELETE /v1/diet-items/{id}
func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid item id")
		return
	}

	if err := h.service.DeleteItem(r.Context(), userID, itemID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFoodNotFound):
		h.sendError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrPlanExists):
		h.sendError(w, http.StatusConflict, "plan_exists", err.Error())
	case errors.Is(err, ledger.ErrItemLocked):
		h.sendError(w, http.StatusForbidden, "item_locked", err.Error())
	case errors.Is(err, ledger.ErrDataIntegrity):
		h.sendError(w, http.StatusUnprocessableEntity, "data_integrity", err.Error())
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidMealSlot),
		errors.Is(err, ledger.ErrInvalidStatus),
		errors.Is(err, ledger.ErrInvalidQuantity):
		h.sendError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
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
