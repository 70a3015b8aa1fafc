package catalogue

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// HandleListFoods handles GET /v1/foods
func (h *Handler) HandleListFoods(w http.ResponseWriter, r *http.Request) {
	query, limit, offset := listParams(r)

	foods, err := h.service.ListFoods(r.Context(), query, limit, offset)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list foods")
		return
	}

	h.sendJSON(w, http.StatusOK, FoodListResponse{Foods: foods})
}

// HandleGetFood handles GET /v1/foods/{id}
func (h *Handler) HandleGetFood(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid food id")
		return
	}

	food, err := h.service.GetFood(r.Context(), id)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Food not found")
		return
	}

	h.sendJSON(w, http.StatusOK, food)
}

// HandleCreateFood handles POST /v1/foods (admin only)
func (h *Handler) HandleCreateFood(w http.ResponseWriter, r *http.Request) {
	var req UpsertFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	food, err := h.service.CreateFood(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create food")
		return
	}

	h.sendJSON(w, http.StatusCreated, food)
}

// HandleUpdateFood handles PATCH /v1/foods/{id} (admin only)
func (h *Handler) HandleUpdateFood(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid food id")
		return
	}

	var req UpsertFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	food, err := h.service.UpdateFood(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update food")
		return
	}

	h.sendJSON(w, http.StatusOK, food)
}

// HandleDeleteFood handles DELETE /v1/foods/{id} (admin only)
func (h *Handler) HandleDeleteFood(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid food id")
		return
	}

	if err := h.service.DeleteFood(r.Context(), id); err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Food not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListActivities handles GET /v1/activities
func (h *Handler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	query, limit, offset := listParams(r)

	activities, err := h.service.ListActivities(r.Context(), query, limit, offset)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list activities")
		return
	}

	h.sendJSON(w, http.StatusOK, ActivityListResponse{Activities: activities})
}

// HandleGetActivity handles GET /v1/activities/{id}
func (h *Handler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid activity id")
		return
	}

	activity, err := h.service.GetActivity(r.Context(), id)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Activity not found")
		return
	}

	h.sendJSON(w, http.StatusOK, activity)
}

// HandleCreateActivity handles POST /v1/activities (admin only)
func (h *Handler) HandleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req UpsertActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create activity")
		return
	}

	h.sendJSON(w, http.StatusCreated, activity)
}

// HandleUpdateActivity handles PATCH /v1/activities/{id} (admin only)
func (h *Handler) HandleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid activity id")
		return
	}

	var req UpsertActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	activity, err := h.service.UpdateActivity(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update activity")
		return
	}

	h.sendJSON(w, http.StatusOK, activity)
}

// HandleDeleteActivity handles DELETE /v1/activities/{id} (admin only)
func (h *Handler) HandleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid activity id")
		return
	}

	if err := h.service.DeleteActivity(r.Context(), id); err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Activity not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.sendError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrNameTaken):
		h.sendError(w, http.StatusConflict, "name_taken", err.Error())
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidServingSize),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidNutrients):
		h.sendError(w, http.StatusBadRequest, "invalid_entry", err.Error())
	default:
		h.sendError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func listParams(r *http.Request) (query string, limit, offset int) {
	q := r.URL.Query()
	query = q.Get("q")

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
	return query, limit, offset
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
