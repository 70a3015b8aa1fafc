package progress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitfuel/fitfuel-server/internal/userctx"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGetDaily handles GET /v1/progress/daily?date=YYYY-MM-DD
func (h *Handler) HandleGetDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	row, err := h.service.GetDaily(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, row)
}

// HandleUpdateDaily handles PATCH /v1/progress/daily?date=YYYY-MM-DD
func (h *Handler) HandleUpdateDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req UpdateAncillaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	row, err := h.service.UpdateAncillary(r.Context(), userID, r.URL.Query().Get("date"), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, row)
}

// HandleDashboardStats handles GET /v1/dashboard/stats?from=&to=
func (h *Handler) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	q := r.URL.Query()
	stats, err := h.service.DashboardStats(r.Context(), userID, q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrInvalidSteps),
		errors.Is(err, ErrInvalidWater),
		errors.Is(err, ErrInvalidGoalStatus):
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
