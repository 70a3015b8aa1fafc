package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fitfuel/fitfuel-server/internal/userctx"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/notifications. ?unread=true narrows the page to
// unread entries.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	q := r.URL.Query()
	onlyUnread := q.Get("unread") == "true"
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))

	resp, err := h.service.List(r.Context(), userID, onlyUnread, limit, offset)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list notifications")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleMarkRead handles POST /v1/notifications/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	marked, err := h.service.MarkRead(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrNothingToMark) {
			h.sendError(w, http.StatusBadRequest, "invalid_entry", err.Error())
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to mark notifications read")
		return
	}

	h.sendJSON(w, http.StatusOK, MarkReadResponse{Marked: marked})
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

func pageParams(rawLimit, rawOffset string) (limit, offset int) {
	limit = defaultPageLimit
	if rawLimit != "" {
		if v, err := strconv.Atoi(rawLimit); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if rawOffset != "" {
		if v, err := strconv.Atoi(rawOffset); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
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
