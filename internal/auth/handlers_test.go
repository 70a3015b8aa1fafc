package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/mailer"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/fitfuel/fitfuel-server/internal/userctx"
)

const testTokenTTL = time.Hour

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "local",
		AuthRequired:        true,
		JWTSecret:           "test_secret",
		JWTIssuer:           "fitfuel",
		JWTTTLMinutes:       60,
		OTPSecret:           "otp_secret",
		OTPTTLSeconds:       600,
		OTPMaxAttempts:      3,
		OTPResendMinSeconds: 0,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		testConfig(),
		memory.NewUsersMemoryStorage(),
		memory.NewPasswordResetMemoryStorage(),
		mailer.NewLocalSender(nil),
	)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignupAndLogin(t *testing.T) {
	service := newTestService(t)
	handlers := NewHandlers(service)

	rec := postJSON(t, handlers.HandleSignup, SignupRequest{
		Email:    "Ann@Example.com",
		Password: "password123",
		Name:     "Ann",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var signupResp AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&signupResp); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if signupResp.AccessToken == "" {
		t.Fatal("signup: expected access token")
	}
	if signupResp.User.Email != "ann@example.com" {
		t.Fatalf("signup: expected lowercased email, got %q", signupResp.User.Email)
	}
	if signupResp.User.Role != "user" {
		t.Fatalf("signup: expected role user, got %q", signupResp.User.Role)
	}

	sub, role, err := service.VerifyJWT(signupResp.AccessToken)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if sub != signupResp.User.ID.String() || role != "user" {
		t.Fatalf("unexpected claims: sub=%q role=%q", sub, role)
	}

	rec = postJSON(t, handlers.HandleLogin, LoginRequest{
		Email:    "ann@example.com",
		Password: "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, handlers.HandleLogin, LoginRequest{
		Email:    "ann@example.com",
		Password: "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with wrong password: expected 401, got %d", rec.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	handlers := NewHandlers(newTestService(t))

	req := SignupRequest{Email: "bob@example.com", Password: "password123"}
	if rec := postJSON(t, handlers.HandleSignup, req); rec.Code != http.StatusCreated {
		t.Fatalf("first signup: expected 201, got %d", rec.Code)
	}

	rec := postJSON(t, handlers.HandleSignup, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", rec.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	handlers := NewHandlers(newTestService(t))

	cases := []struct {
		name string
		req  SignupRequest
	}{
		{"missing email", SignupRequest{Password: "password123"}},
		{"missing password", SignupRequest{Email: "a@b.com"}},
		{"invalid email", SignupRequest{Email: "not-an-email", Password: "password123"}},
		{"short password", SignupRequest{Email: "a@b.com", Password: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, handlers.HandleSignup, tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	service := newTestService(t)
	service.generateCode = func() (string, error) { return "123456", nil }
	handlers := NewHandlers(service)

	rec := postJSON(t, handlers.HandleSignup, SignupRequest{
		Email:    "carol@example.com",
		Password: "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", rec.Code)
	}

	rec = postJSON(t, handlers.HandlePasswordResetRequest, PasswordResetRequestBody{Email: "carol@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset request: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, handlers.HandlePasswordReset, PasswordResetConfirmBody{
		Email:       "carol@example.com",
		Code:        "000000",
		NewPassword: "newpassword1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reset with wrong code: expected 401, got %d", rec.Code)
	}

	rec = postJSON(t, handlers.HandlePasswordReset, PasswordResetConfirmBody{
		Email:       "carol@example.com",
		Code:        "123456",
		NewPassword: "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, handlers.HandleLogin, LoginRequest{
		Email:    "carol@example.com",
		Password: "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rec.Code)
	}

	rec = postJSON(t, handlers.HandleLogin, LoginRequest{
		Email:    "carol@example.com",
		Password: "password123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with old password: expected 401, got %d", rec.Code)
	}
}

func TestPasswordResetUnknownEmailDoesNotLeak(t *testing.T) {
	handlers := NewHandlers(newTestService(t))

	rec := postJSON(t, handlers.HandlePasswordResetRequest, PasswordResetRequestBody{Email: "nobody@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset request for unknown email: expected 200, got %d", rec.Code)
	}
}

func TestPasswordResetLocksAfterMaxAttempts(t *testing.T) {
	service := newTestService(t)
	service.generateCode = func() (string, error) { return "123456", nil }
	handlers := NewHandlers(service)

	postJSON(t, handlers.HandleSignup, SignupRequest{Email: "dave@example.com", Password: "password123"})
	postJSON(t, handlers.HandlePasswordResetRequest, PasswordResetRequestBody{Email: "dave@example.com"})

	for i := 0; i < 3; i++ {
		rec := postJSON(t, handlers.HandlePasswordReset, PasswordResetConfirmBody{
			Email:       "dave@example.com",
			Code:        "999999",
			NewPassword: "newpassword1",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	// Correct code is rejected once the attempt budget is spent.
	rec := postJSON(t, handlers.HandlePasswordReset, PasswordResetConfirmBody{
		Email:       "dave@example.com",
		Code:        "123456",
		NewPassword: "newpassword1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("locked reset: expected 401, got %d", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error.Code != "code_locked" {
		t.Fatalf("expected code_locked, got %q", errResp.Error.Code)
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	service := newTestService(t)
	middleware := NewMiddleware(testConfig(), service)

	var gotUserID string
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = userctx.GetUserID(r.Context())
		gotAdmin = userctx.IsAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.RequireAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	token, err := service.generateJWT("user-1", "user", testTokenTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", gotUserID)
	}
	if gotAdmin {
		t.Fatal("user role must not be admin")
	}

	// Public paths bypass the check entirely.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("public path: expected 200, got %d", rec.Code)
	}
}

func TestRequireAdminMiddleware(t *testing.T) {
	service := newTestService(t)
	middleware := NewMiddleware(testConfig(), service)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequireAuth(middleware.RequireAdmin(next))

	userToken, err := service.generateJWT("user-1", "user", testTokenTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	adminToken, err := service.generateJWT("admin-1", "admin", testTokenTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/foods", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user role: expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/foods", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin role: expected 200, got %d", rec.Code)
	}
}
