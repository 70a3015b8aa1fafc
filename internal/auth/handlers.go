package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleSignup handles POST /v1/auth/signup
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /v1/auth/login
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandlePasswordResetRequest handles POST /v1/auth/password/request
func (h *Handlers) HandlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandlePasswordReset handles POST /v1/auth/password/reset
func (h *Handlers) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" || req.NewPassword == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "email, code and new_password are required")
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		writeErrorResponse(w, serviceErr.Status, serviceErr.Code, serviceErr.Message)
		return
	}

	writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
