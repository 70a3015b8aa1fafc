package profiles

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/fitfuel/fitfuel-server/internal/userctx"
	"github.com/google/uuid"
)

func newTestHandler() *Handler {
	return NewHandler(NewService(memory.NewProfilesMemoryStorage()))
}

func requestWithUser(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := userctx.WithUserID(req.Context(), userID.String())
	return req.WithContext(ctx)
}

func TestHandleGetBeforeSetup(t *testing.T) {
	handler := newTestHandler()

	req := requestWithUser(http.MethodGet, "/v1/profile", nil, uuid.New())
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before profile setup, got %d", w.Code)
	}
}

func TestHandleUpsertAndGet(t *testing.T) {
	handler := newTestHandler()
	userID := uuid.New()

	body, _ := json.Marshal(UpsertProfileRequest{
		HeightCm:      180,
		WeightKg:      75,
		DateOfBirth:   "1994-06-15",
		Gender:        "male",
		ActivityLevel: "moderate",
		Goal:          "maintain",
	})

	req := requestWithUser(http.MethodPut, "/v1/profile", body, userID)
	w := httptest.NewRecorder()
	handler.HandleUpsert(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var dto ProfileDTO
	if err := json.NewDecoder(w.Body).Decode(&dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.ActivityLevel != "MODERATE" || dto.Goal != "MAINTAIN" {
		t.Fatalf("expected normalized enums, got %q / %q", dto.ActivityLevel, dto.Goal)
	}

	req = requestWithUser(http.MethodGet, "/v1/profile", nil, userID)
	w = httptest.NewRecorder()
	handler.HandleGet(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.WeightKg != 75 || dto.DateOfBirth != "1994-06-15" {
		t.Fatalf("unexpected profile: %+v", dto)
	}
}

func TestHandleUpsertValidation(t *testing.T) {
	handler := newTestHandler()
	userID := uuid.New()

	base := UpsertProfileRequest{
		HeightCm:      170,
		WeightKg:      60,
		DateOfBirth:   "2000-01-01",
		Gender:        "female",
		ActivityLevel: "LAZY",
		Goal:          "LOSE_WEIGHT",
	}

	cases := []struct {
		name   string
		mutate func(*UpsertProfileRequest)
	}{
		{"zero height", func(r *UpsertProfileRequest) { r.HeightCm = 0 }},
		{"negative weight", func(r *UpsertProfileRequest) { r.WeightKg = -1 }},
		{"bad date", func(r *UpsertProfileRequest) { r.DateOfBirth = "15.06.1994" }},
		{"future date", func(r *UpsertProfileRequest) { r.DateOfBirth = "2999-01-01" }},
		{"bad gender", func(r *UpsertProfileRequest) { r.Gender = "other" }},
		{"bad activity", func(r *UpsertProfileRequest) { r.ActivityLevel = "COUCH" }},
		{"bad goal", func(r *UpsertProfileRequest) { r.Goal = "BULK" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			body, _ := json.Marshal(req)

			httpReq := requestWithUser(http.MethodPut, "/v1/profile", body, userID)
			w := httptest.NewRecorder()
			handler.HandleUpsert(w, httpReq)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHandleUpsertWithoutUser(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/v1/profile", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	handler.HandleUpsert(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user in context, got %d", w.Code)
	}
}
