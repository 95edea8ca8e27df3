package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// EmailProvider selects the active delivery transport for the whole
	// process: "smtp" (direct submission, "gmail" accepted as an alias)
	// or "brevo" (transactional email HTTP API).
	EmailProvider string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SenderName    string
	SenderEmail   string
	BrevoAPIKey   string

	// ReturnOTPInResponse echoes the generated code in the /send-otp
	// response and shows codes plain on the debug listing. Diagnostic
	// configurations only.
	ReturnOTPInResponse bool
	OTPExpirySeconds    int
	DebugEndpoints      bool

	// OTPStore selects the credential store backend: "memory" (default,
	// process-local), "redis" or "dynamo".
	OTPStore      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTableOTP string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	env := getEnv("APP_ENV", "development")
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  env,

		EmailProvider: strings.ToLower(getEnv("EMAIL_PROVIDER", "smtp")),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderName:    getEnv("SENDER_NAME", "NoReply"),
		SenderEmail:   getEnv("SENDER_EMAIL", getEnv("SMTP_USERNAME", "")),
		BrevoAPIKey:   getEnv("BREVO_API_KEY", ""),

		ReturnOTPInResponse: getEnvBool("RETURN_OTP_IN_RESPONSE", true),
		OTPExpirySeconds:    getEnvInt("OTP_EXPIRY_SECONDS", 300),
		DebugEndpoints:      getEnvBool("DEBUG_ENDPOINTS", env != "production"),

		OTPStore:      strings.ToLower(getEnv("OTP_STORE", "memory")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTableOTP: getEnv("DYNAMO_TABLE_OTPS", "otps"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
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
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
