package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// DiagnosticsSummary returns a loggable summary with secrets masked.
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s presign_ttl=%ds access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		c.PresignTTLSeconds,
		accessKeyStatus,
		secretKeyStatus,
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// Config holds the full application configuration resolved from env vars.
type Config struct {
	Env      string // local | staging | production
	Port     int
	LogLevel string

	// Reference calendar day. Every "is this item from today?" decision
	// goes through this single zone, never through server local time.
	TimeZone string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob / S3 (product images, stored reports)
	Blob BlobConfig

	// Reports
	ReportsMaxRangeDays int

	// Uploads (product images)
	UploadMaxMB       int
	UploadAllowedMime string

	// Daily progress
	ProgressMaxWaterMlPerDay int
	ProgressMaxStepsPerDay   int

	// AI suggestions
	SuggestMaxWorkoutItems int // new workout items inserted per call
	SuggestMaxDietItems    int // new diet items inserted per call

	// Authentication
	AuthRequired        bool
	JWTSecret           string
	JWTIssuer           string
	JWTTTLMinutes       int
	OTPSecret           string
	OTPTTLSeconds       int
	OTPMaxAttempts      int
	OTPResendMinSeconds int

	// Mailer
	EmailSenderMode string // local | smtp
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPUseTLS      bool

	// AI
	AIMode            string // mock | openai
	AIMaxOutputTokens int
	AITemperature     float64
	AITimeoutSeconds  int
	OpenAIAPIKey      string
	OpenAIModel       string

	// Migrations
	RunMigrationsOnStartup bool
}

// Location resolves TimeZone to a *time.Location, falling back to UTC on a
// bad zone name (already warned about in Load).
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
func Load() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Time zone ----------
	timeZone := strings.TrimSpace(os.Getenv("TIME_ZONE"))
	if timeZone == "" {
		timeZone = "UTC"
	}
	if _, err := time.LoadLocation(timeZone); err != nil {
		log.Printf("WARNING: unknown TIME_ZONE=%q, fallback to UTC", timeZone)
		timeZone = "UTC"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 ----------
	blobMode := parseBlobMode("BLOB_MODE", BlobModeLocal)

	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	blobCfg := BlobConfig{
		Mode: blobMode,
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: s3PresignTTL,
		},
	}

	reportsMaxRangeDays := envInt("REPORTS_MAX_RANGE_DAYS", 90)

	uploadMaxMB := envInt("UPLOAD_MAX_MB", 10)
	uploadAllowedMime := os.Getenv("UPLOAD_ALLOWED_MIME")
	if uploadAllowedMime == "" {
		uploadAllowedMime = "image/jpeg,image/png,image/webp"
	}

	progressMaxWaterMl := envInt("PROGRESS_MAX_WATER_ML_PER_DAY", 8000)
	progressMaxSteps := envInt("PROGRESS_MAX_STEPS_PER_DAY", 200000)

	suggestMaxWorkoutItems := envInt("SUGGEST_MAX_WORKOUT_ITEMS", 3)
	suggestMaxDietItems := envInt("SUGGEST_MAX_DIET_ITEMS", 4)

	// ---------- Auth ----------
	// AUTH_REQUIRED defaults to on; set AUTH_REQUIRED=0 only for local tooling.
	authRequiredRaw := strings.TrimSpace(os.Getenv("AUTH_REQUIRED"))
	authRequired := true
	if authRequiredRaw != "" {
		authRequired = parseBoolEnv("AUTH_REQUIRED")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	otpSecret := strings.TrimSpace(os.Getenv("OTP_SECRET"))
	if otpSecret == "" {
		otpSecret = jwtSecret
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "fitfuel"
	}

	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)

	otpTTLSeconds := envInt("OTP_TTL_SECONDS", 600)
	if otpTTLSeconds <= 0 {
		otpTTLSeconds = 600
	}
	otpMaxAttempts := envInt("OTP_MAX_ATTEMPTS", 5)
	if otpMaxAttempts <= 0 {
		otpMaxAttempts = 5
	}
	otpResendMinSeconds := envInt("OTP_RESEND_MIN_SECONDS", 60)
	if otpResendMinSeconds <= 0 {
		otpResendMinSeconds = 60
	}

	// ---------- Mailer ----------
	emailSenderMode := strings.ToLower(strings.TrimSpace(os.Getenv("EMAIL_SENDER_MODE")))
	if emailSenderMode == "" {
		emailSenderMode = "local"
	}
	if emailSenderMode != "local" && emailSenderMode != "smtp" {
		log.Printf("WARNING: unknown EMAIL_SENDER_MODE=%q, fallback to local", emailSenderMode)
		emailSenderMode = "local"
	}

	smtpPort := envInt("SMTP_PORT", 587)
	smtpUseTLS := true
	if v := strings.TrimSpace(os.Getenv("SMTP_USE_TLS")); v != "" {
		smtpUseTLS = parseBoolEnv("SMTP_USE_TLS")
	}

	// ---------- AI ----------
	aiMode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if aiMode == "" {
		aiMode = "mock"
	}
	if aiMode != "mock" && aiMode != "openai" {
		log.Printf("WARNING: unknown AI_MODE=%q, fallback to mock", aiMode)
		aiMode = "mock"
	}

	aiMaxOutputTokens := envInt("AI_MAX_OUTPUT_TOKENS", 1200)
	aiTemperature := envFloat("AI_TEMPERATURE", 0.3)
	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 20)

	openAIModel := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if openAIModel == "" {
		openAIModel = "gpt-4o-mini"
	}

	return &Config{
		Env:      env,
		Port:     port,
		LogLevel: logLevel,

		TimeZone: timeZone,

		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: blobCfg,

		ReportsMaxRangeDays: reportsMaxRangeDays,

		UploadMaxMB:       uploadMaxMB,
		UploadAllowedMime: uploadAllowedMime,

		ProgressMaxWaterMlPerDay: progressMaxWaterMl,
		ProgressMaxStepsPerDay:   progressMaxSteps,

		SuggestMaxWorkoutItems: suggestMaxWorkoutItems,
		SuggestMaxDietItems:    suggestMaxDietItems,

		AuthRequired:        authRequired,
		JWTSecret:           jwtSecret,
		JWTIssuer:           jwtIssuer,
		JWTTTLMinutes:       jwtTTLMinutes,
		OTPSecret:           otpSecret,
		OTPTTLSeconds:       otpTTLSeconds,
		OTPMaxAttempts:      otpMaxAttempts,
		OTPResendMinSeconds: otpResendMinSeconds,

		EmailSenderMode: emailSenderMode,
		SMTPHost:        strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:        smtpPort,
		SMTPUsername:    strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        strings.TrimSpace(os.Getenv("SMTP_FROM")),
		SMTPUseTLS:      smtpUseTLS,

		AIMode:            aiMode,
		AIMaxOutputTokens: aiMaxOutputTokens,
		AITemperature:     aiTemperature,
		AITimeoutSeconds:  aiTimeoutSeconds,
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:       openAIModel,

		RunMigrationsOnStartup: runMigrationsOnStartup,
	}
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: %s=%q is not an integer, using default %d", key, v, def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a number, using default %g", key, v, def)
		return def
	}
	return f
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}

func parseBlobMode(key, def string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	if v != BlobModeLocal && v != BlobModeS3 && v != BlobModeAuto {
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, v, def)
		return def
	}
	return v
}

// parseCORSOrigins splits CORS_ALLOWED_ORIGINS; local env gets permissive
// localhost defaults so the web client works out of the box.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
