package auth

import (
	"net/http"
	"strings"

	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/userctx"
)

type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// subject and role in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.AuthRequired || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		userID, role, err := m.authenticateHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		ctx := userctx.WithUserID(r.Context(), userID)
		ctx = userctx.WithRole(ctx, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards catalogue and product mutations. It must run inside
// RequireAuth, which populates the role claim.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.AuthRequired {
			next.ServeHTTP(w, r)
			return
		}

		if !userctx.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "forbidden", "Admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (string, string, error) {
	if authHeader == "" {
		return "", "", ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", ErrInvalidToken
	}

	return m.service.VerifyJWT(parts[1])
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}

func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/")
}
