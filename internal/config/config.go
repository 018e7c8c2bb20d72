package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// One secret per token purpose so a token of one kind never verifies as another.
	OTPTokenSecret    string
	AccessTokenSecret string
	EmailTokenSecret  string
	PhoneTokenSecret  string
	OTPTTL            time.Duration
	OTPTokenTTL       time.Duration
	AccessTokenTTL    time.Duration
	ChangeTokenTTL    time.Duration

	CookieHashKey string
	CookieSecure  bool
	PhoneRegion   string

	DBDriver       string // "postgres" | "sqlite" | "dynamo"
	DatabaseURL    string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SMTPHost        string
	SMTPPort        string
	SMTPFrom        string
	SMTPUsername    string
	SMTPPassword    string
	SNSRegion       string
	DispatchTimeout time.Duration
	NotifyTransport string // "direct" | "kafka"
	KafkaBrokers    []string
	KafkaOTPTopic   string
	KafkaGroupID    string

	GoogleClientID     string
	GoogleClientSecret string
	ServerLink         string

	AllowedOrigins []string // CORS allowed origins
	AuthRateLimit  float64
	AuthRateBurst  int
	TrustProxy     bool // honour X-Forwarded-For / X-Real-IP from a fronting proxy
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users       string
	Identifiers string
	Otps        string
	Profiles    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		OTPTokenSecret:    getEnv("OTP_TOKEN_SECRET", ""),
		AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
		EmailTokenSecret:  getEnv("EMAIL_TOKEN_SECRET", ""),
		PhoneTokenSecret:  getEnv("PHONE_TOKEN_SECRET", ""),
		OTPTTL:            getEnvDuration("OTP_TTL", 2*time.Minute),
		OTPTokenTTL:       getEnvDuration("OTP_TOKEN_TTL", 2*time.Minute),
		AccessTokenTTL:    getEnvDuration("ACCESS_TOKEN_TTL", 365*24*time.Hour),
		ChangeTokenTTL:    getEnvDuration("CHANGE_TOKEN_TTL", 2*time.Minute),

		CookieHashKey: getEnv("COOKIE_HASH_KEY", ""),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
		PhoneRegion:   getEnv("PHONE_REGION", "IR"),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=blog port=5432 sslmode=disable"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			Identifiers: getEnv("DYNAMO_TABLE_USER_IDENTIFIERS", "user_identifiers"),
			Otps:        getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Profiles:    getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
		},

		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "1025"),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SNSRegion:       getEnv("SNS_REGION", "us-east-1"),
		DispatchTimeout: getEnvDuration("DISPATCH_TIMEOUT", 10*time.Second),
		NotifyTransport: getEnv("NOTIFY_TRANSPORT", "direct"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaOTPTopic:   getEnv("KAFKA_OTP_TOPIC", "otp-dispatch"),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "otp-notifier"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		ServerLink:         getEnv("SERVER_LINK", "http://localhost:3000"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AuthRateLimit:  getEnvFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:  getEnvInt("AUTH_RATE_BURST", 10),
		TrustProxy:     getEnv("TRUST_PROXY", "false") == "true",
	}
}

// IsProduction reports whether OTP codes are dispatched for real and hidden from responses.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
