package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL    string
	DatabaseDriver string
	Port           string
	GoEnv          string
	LogLevel       string
	LogEncoding    string

	AuthDisabled  bool
	Auth0Domain   string
	Auth0Audience string

	// Auth0WriteScope, when set, is required on every mutating request
	Auth0WriteScope string

	CORSAllowedOrigins []string

	StorageDriver      string
	StorageLocalDir    string
	StoragePublicURL   string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	PDFRendererURL string
	CompanyName    string

	RateLimitRPS   float64
	RateLimitBurst int

	NotificationsDispatchEnabled  bool
	NotificationsDispatchSchedule string
	TwilioAccountSID              string
	TwilioAuthToken               string
	TwilioFromNumber              string

	// EnvFile is the .env file the configuration was read from, empty when
	// only the process environment was used.
	EnvFile string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Environment specific file first, then .env. Neither is required:
	// in deployed environments the variables are set directly.
	loaded := ""
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err == nil {
		loaded = envFile
	} else if err := godotenv.Load(); err == nil {
		loaded = ".env"
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		Port:           getEnv("PORT", "8080"),
		GoEnv:          getEnv("GO_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogEncoding:    getEnv("LOG_ENCODING", "json"),

		AuthDisabled:  getEnvBool("AUTH_DISABLED", false),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),

		Auth0WriteScope: getEnv("AUTH0_WRITE_SCOPE", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		StorageDriver:      getEnv("STORAGE_DRIVER", "local"),
		StorageLocalDir:    getEnv("STORAGE_LOCAL_DIR", "./storage"),
		StoragePublicURL:   getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		PDFRendererURL: getEnv("PDF_RENDERER_URL", ""),
		CompanyName:    getEnv("COMPANY_NAME", "Blue Bay Mechanical"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		NotificationsDispatchEnabled:  getEnvBool("NOTIFICATIONS_DISPATCH_ENABLED", false),
		NotificationsDispatchSchedule: getEnv("NOTIFICATIONS_DISPATCH_SCHEDULE", "@every 1m"),
		TwilioAccountSID:              getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:               getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:              getEnv("TWILIO_FROM_NUMBER", ""),

		EnvFile: loaded,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = "field_service.db?_foreign_keys=on"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if !c.AuthDisabled && c.Auth0Domain == "" && c.IsProduction() {
		return fmt.Errorf("AUTH0_DOMAIN is required in production")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// SMSEnabled reports whether Twilio credentials are configured
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// GetConfig returns the configuration set with SetConfig
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the process-wide configuration (tests inject their own)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
