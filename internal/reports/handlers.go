package reports

import (
	"encoding/json"
	"errors"
	"fmt"
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

// HandleCreate handles POST /v1/reports
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	report, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create report")
		return
	}

	h.sendJSON(w, http.StatusCreated, report)
}

// HandleList handles GET /v1/reports
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	limit, offset := pageParams(r)
	reports, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list reports")
		return
	}

	h.sendJSON(w, http.StatusOK, ReportListResponse{Reports: reports})
}

// HandleDownload handles GET /v1/reports/{id}/download. With S3 wired the
// client is redirected to a presigned URL, otherwise the file is served
// directly.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid report id")
		return
	}

	url, data, contentType, filename, err := h.service.Download(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to download report")
		return
	}

	if url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleDelete handles DELETE /v1/reports/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "Invalid report id")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Report not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.sendError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrReportNotReady):
		h.sendError(w, http.StatusConflict, "report_not_ready", err.Error())
	case errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrRangeTooWide):
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

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
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
