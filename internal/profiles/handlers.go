package profiles

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

// HandleGet handles GET /v1/profile
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "not_found", "Profile not set up yet")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load profile")
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

// HandleUpsert handles PUT /v1/profile
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	profile, err := h.service.UpsertProfile(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidHeight),
			errors.Is(err, ErrInvalidWeight),
			errors.Is(err, ErrInvalidBirthDate),
			errors.Is(err, ErrInvalidGender),
			errors.Is(err, ErrInvalidActivity),
			errors.Is(err, ErrInvalidGoal):
			h.sendError(w, http.StatusBadRequest, "invalid_profile", err.Error())
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to save profile")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
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
