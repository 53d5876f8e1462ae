package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minTokenSecretLen = 32

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	// PersistenceBackend selects the document store: "dynamo" or "firestore".
	PersistenceBackend string
	// OTPStore selects where verification sessions live: "memory" or "dynamo".
	OTPStore string

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	OTPCodeLength    int
	OTPTTL           time.Duration
	OTPSweepInterval time.Duration

	SessionTokenSecret string
	SessionTokenTTL    time.Duration
	SessionCookieName  string
	CookieHashKey      string
	CookieBlockKey     string
	CookieSecure       bool

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string

	PublicBaseURL  string
	AllowedOrigins []string // CORS allowed origins

	SuperadminUsername string
	SuperadminPassword string
	SuperadminEmail    string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Tags                 string
	Admins               string
	Users                string
	VerificationSessions string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	otpTTL := time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Tags:                 getEnv("DYNAMO_TABLE_TAGS", "tags"),
			Admins:               getEnv("DYNAMO_TABLE_ADMINS", "admins"),
			Users:                getEnv("DYNAMO_TABLE_USERS", "users"),
			VerificationSessions: getEnv("DYNAMO_TABLE_VERIFICATION_SESSIONS", "verification_sessions"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "label-qr-codes"),

		PersistenceBackend: strings.ToLower(getEnv("PERSISTENCE_BACKEND", "dynamo")),
		OTPStore:           strings.ToLower(getEnv("OTP_STORE", "memory")),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		OTPCodeLength:    getEnvInt("OTP_CODE_LENGTH", 6),
		OTPTTL:           otpTTL,
		OTPSweepInterval: getEnvDuration("OTP_SWEEP_INTERVAL", otpTTL/2),

		SessionTokenSecret: getEnv("SESSION_TOKEN_SECRET", ""),
		SessionTokenTTL:    getEnvDuration("SESSION_TOKEN_TTL", 24*time.Hour),
		SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "label_session"),
		CookieHashKey:      getEnv("SESSION_COOKIE_HASH_KEY", ""),
		CookieBlockKey:     getEnv("SESSION_COOKIE_BLOCK_KEY", ""),
		CookieSecure:       getEnvBool("SESSION_COOKIE_SECURE", true),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		SuperadminUsername: getEnv("SUPERADMIN_USERNAME", ""),
		SuperadminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
		SuperadminEmail:    getEnv("SUPERADMIN_EMAIL", ""),
	}
}

// Validate rejects settings the service cannot run safely with.
func (c *Config) Validate() error {
	if len(c.SessionTokenSecret) < minTokenSecretLen {
		return fmt.Errorf("SESSION_TOKEN_SECRET must be at least %d bytes", minTokenSecretLen)
	}
	if c.SessionTokenTTL <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL must be positive")
	}
	if c.OTPCodeLength < 4 || c.OTPCodeLength > 12 {
		return fmt.Errorf("OTP_CODE_LENGTH must be between 4 and 12")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL_MINUTES must be positive")
	}
	if c.OTPSweepInterval <= 0 {
		return fmt.Errorf("OTP_SWEEP_INTERVAL must be positive")
	}
	switch c.PersistenceBackend {
	case "dynamo", "firestore":
	default:
		return fmt.Errorf("PERSISTENCE_BACKEND must be dynamo or firestore, got %q", c.PersistenceBackend)
	}
	switch c.OTPStore {
	case "memory", "dynamo":
	default:
		return fmt.Errorf("OTP_STORE must be memory or dynamo, got %q", c.OTPStore)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "1h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
