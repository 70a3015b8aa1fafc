package suggest

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

// HandleSuggestDiet handles POST /v1/suggestions/diet
func (h *Handler) HandleSuggestDiet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	resp, err := h.service.SuggestDiet(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, resp)
}

// HandleSuggestWorkout handles POST /v1/suggestions/workout
func (h *Handler) HandleSuggestWorkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	resp, err := h.service.SuggestWorkout(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProfileRequired), errors.Is(err, ErrProfileIncomplete):
		h.sendError(w, http.StatusUnprocessableEntity, "profile_required", err.Error())
	case errors.Is(err, ErrAIUnavailable):
		h.sendError(w, http.StatusBadGateway, "ai_unavailable", "Suggestion provider unavailable")
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
