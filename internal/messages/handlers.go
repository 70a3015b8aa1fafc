package messages

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

// HandleListConversations handles GET /v1/conversations
func (h *Handler) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	conversations, err := h.service.ListConversations(r.Context(), userID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list conversations")
		return
	}

	h.sendJSON(w, http.StatusOK, ConversationListResponse{Conversations: conversations})
}

// HandleListConversation handles GET /v1/conversations/{peerID}/messages
func (h *Handler) HandleListConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	peerID, ok := pathPeerID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid peer id")
		return
	}

	limit, offset := pageParams(r)
	msgs, err := h.service.ListConversation(r.Context(), userID, peerID, limit, offset)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list conversation")
		return
	}

	h.sendJSON(w, http.StatusOK, MessageListResponse{Messages: msgs})
}

// HandleSendMessage handles POST /v1/conversations/{peerID}/messages
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	peerID, ok := pathPeerID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid peer id")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	msg, err := h.service.Send(r.Context(), userID, peerID, req.Body)
	if err != nil {
		h.writeServiceError(w, err, "Failed to send message")
		return
	}

	h.sendJSON(w, http.StatusCreated, msg)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPeerNotFound):
		h.sendError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrSelfMessage),
		errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrBodyTooLong):
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

func pathPeerID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("peerID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()

	limit = defaultPageLimit
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
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
