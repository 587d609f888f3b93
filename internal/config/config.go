package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Shared admin secret. Not hashed, not per-user.
	AdminPassword string

	// Lead store. One connection URL, two role credentials.
	StoreURL            string
	StoreRestrictedKey  string
	StoreElevatedKey    string
	StoreRestrictedRole string
	StoreElevatedRole   string
	StoreConnectTimeout time.Duration

	// Lead intake behaviour
	LeadFormVariant            string
	DefaultDiscountCode        string
	IntakeSuppressStoreFailure bool
	IntakeExposeStoreCause     bool

	// Session gate
	SessionVerification string
	SessionSecret       string
	SessionMaxAge       time.Duration

	// Redis backs the "stored" session verifier
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// New-lead notifications. EmailProvider is "sendgrid" or "ses".
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	LeadNotifyEmail   string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		StoreURL:            getEnv("STORE_URL", ""),
		StoreRestrictedKey:  getEnv("STORE_RESTRICTED_KEY", ""),
		StoreElevatedKey:    getEnv("STORE_ELEVATED_KEY", ""),
		StoreRestrictedRole: getEnv("STORE_RESTRICTED_ROLE", "lead_intake"),
		StoreElevatedRole:   getEnv("STORE_ELEVATED_ROLE", "lead_admin"),
		StoreConnectTimeout: getEnvAsDuration("STORE_CONNECT_TIMEOUT", 10*time.Second),

		LeadFormVariant:            strings.ToLower(strings.TrimSpace(getEnv("LEAD_FORM_VARIANT", "email_phone"))),
		DefaultDiscountCode:        getEnv("DEFAULT_DISCOUNT_CODE", "THINK10"),
		IntakeSuppressStoreFailure: getEnvAsBool("INTAKE_SUPPRESS_STORE_FAILURE", true),
		IntakeExposeStoreCause:     getEnvAsBool("INTAKE_EXPOSE_STORE_CAUSE", false),

		SessionVerification: strings.ToLower(strings.TrimSpace(getEnv("SESSION_VERIFICATION", "signed"))),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionMaxAge:       getEnvAsDuration("SESSION_MAX_AGE", 7*24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Think Different"),
		LeadNotifyEmail:   getEnv("LEAD_NOTIFY_EMAIL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// IsProduction reports whether cookies should be issued with the Secure flag.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// Validate fails fast on missing secrets. The returned error is a *ConfigError
// naming every missing key.
func (c *Config) Validate() error {
	if c == nil {
		return &ConfigError{Missing: []string{"ADMIN_PASSWORD", "STORE_URL", "STORE_RESTRICTED_KEY", "STORE_ELEVATED_KEY"}}
	}
	var missing []string
	required := []struct {
		key   string
		value string
	}{
		{"ADMIN_PASSWORD", c.AdminPassword},
		{"STORE_URL", c.StoreURL},
		{"STORE_RESTRICTED_KEY", c.StoreRestrictedKey},
		{"STORE_ELEVATED_KEY", c.StoreElevatedKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if c.SessionVerification == "stored" && strings.TrimSpace(c.RedisAddr) == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// ConfigError reports operator-correctable misconfiguration.
type ConfigError struct {
	Missing []string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
