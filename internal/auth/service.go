package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/mailer"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// ServiceError carries an HTTP status with the error code, so handlers can
// map service failures onto the API error envelope directly.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Service handles signup, login and the password-reset flow.
type Service struct {
	config *config.Config
	users  storage.UsersStorage
	resets storage.PasswordResetStorage
	sender mailer.Sender

	now          func() time.Time
	generateCode func() (string, error)
}

func NewService(cfg *config.Config, users storage.UsersStorage, resets storage.PasswordResetStorage, sender mailer.Sender) *Service {
	return &Service{
		config:       cfg,
		users:        users,
		resets:       resets,
		sender:       sender,
		now:          time.Now,
		generateCode: GenerateCode,
	}
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if !isValidEmail(email) {
		return nil, &ServiceError{Status: http.StatusBadRequest, Code: "invalid_email", Message: "Invalid email format"}
	}
	if len(req.Password) < 8 {
		return nil, &ServiceError{Status: http.StatusBadRequest, Code: "weak_password", Message: "Password must be at least 8 characters"}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, &ServiceError{Status: http.StatusConflict, Code: "email_taken", Message: "An account with this email already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &storage.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         "user",
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(user)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, &ServiceError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "Invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &ServiceError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "Invalid email or password"}
	}

	return s.issueToken(user)
}

// RequestPasswordReset stores a hashed one-time code and mails it. The
// response is identical whether or not the account exists, so the endpoint
// cannot be used to probe for registered emails.
func (s *Service) RequestPasswordReset(ctx context.Context, emailRaw string) error {
	email := normalizeEmail(emailRaw)
	if !isValidEmail(email) {
		return &ServiceError{Status: http.StatusBadRequest, Code: "invalid_email", Message: "Invalid email format"}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return nil
	}

	now := s.now()
	if existing, err := s.resets.GetCode(ctx, email); err == nil {
		if now.Sub(existing.LastSentAt) < time.Duration(s.config.OTPResendMinSeconds)*time.Second {
			return &ServiceError{Status: http.StatusTooManyRequests, Code: "reset_too_soon", Message: "A code was sent recently, please wait before retrying"}
		}
	}

	code, err := s.generateCode()
	if err != nil {
		return err
	}

	reset := &storage.PasswordResetCode{
		Email:      email,
		CodeHash:   HashCode(email, code, s.config.OTPSecret),
		ExpiresAt:  now.Add(time.Duration(s.config.OTPTTLSeconds) * time.Second),
		Attempts:   0,
		LastSentAt: now,
	}

	if err := s.resets.UpsertCode(ctx, reset); err != nil {
		return err
	}

	subject := "Your FitFuel password reset code"
	body := fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, s.config.OTPTTLSeconds/60)
	return s.sender.Send(email, subject, body)
}

func (s *Service) ResetPassword(ctx context.Context, req *PasswordResetConfirmBody) error {
	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.Code)

	if !isSixDigitCode(code) {
		return &ServiceError{Status: http.StatusBadRequest, Code: "invalid_code_format", Message: "Code must contain exactly 6 digits"}
	}
	if len(req.NewPassword) < 8 {
		return &ServiceError{Status: http.StatusBadRequest, Code: "weak_password", Message: "Password must be at least 8 characters"}
	}

	reset, err := s.resets.GetCode(ctx, email)
	if err != nil {
		return &ServiceError{Status: http.StatusUnauthorized, Code: "code_expired_or_not_found", Message: "Reset code not found or expired"}
	}

	now := s.now()
	if now.After(reset.ExpiresAt) {
		_ = s.resets.DeleteCode(ctx, email)
		return &ServiceError{Status: http.StatusUnauthorized, Code: "code_expired_or_not_found", Message: "Reset code not found or expired"}
	}
	if reset.Attempts >= s.config.OTPMaxAttempts {
		return &ServiceError{Status: http.StatusUnauthorized, Code: "code_locked", Message: "Too many failed attempts, request a new code"}
	}

	expectedHash := HashCode(email, code, s.config.OTPSecret)
	if !hmac.Equal([]byte(reset.CodeHash), []byte(expectedHash)) {
		if _, err := s.resets.IncrementAttempts(ctx, email); err != nil {
			return err
		}
		return &ServiceError{Status: http.StatusUnauthorized, Code: "invalid_code", Message: "Invalid reset code"}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return &ServiceError{Status: http.StatusUnauthorized, Code: "code_expired_or_not_found", Message: "Reset code not found or expired"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	return s.resets.DeleteCode(ctx, email)
}

func (s *Service) issueToken(user *storage.User) (*AuthResponse, error) {
	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute

	accessToken, err := s.generateJWT(user.ID.String(), user.Role, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		User:        ToUserDTO(user),
	}, nil
}

func (s *Service) generateJWT(userID, role string, ttl time.Duration) (string, error) {
	now := s.now()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iss":  s.config.JWTIssuer,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT checks the signature and returns the subject and role claims.
func (s *Service) VerifyJWT(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", ErrInvalidToken
	}
	role, _ := claims["role"].(string)

	return sub, role, nil
}

// GenerateCode returns a random six-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashCode binds the code to the email with an HMAC, so a leaked table of
// hashes cannot be replayed for another address.
func HashCode(email, code, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(email + ":" + code))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isSixDigitCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
