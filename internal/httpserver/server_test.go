package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fitfuel/fitfuel-server/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:     8080,
		TimeZone: "UTC",
		Blob:     config.BlobConfig{Mode: config.BlobModeLocal},
	}
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestPublicCatalogueRouteRegistered(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/v1/foods", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from food list, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "foods") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSignupRouteRegistered(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	// Malformed JSON proves the route is wired: a missing route would be 404.
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed signup body, got %d", w.Code)
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = true
	cfg.JWTSecret = "test-secret"
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestHealthzBypassesAuth(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = true
	cfg.JWTSecret = "test-secret"
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthz without auth, got %d", w.Code)
	}
}
