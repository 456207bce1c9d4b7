package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Zoho        ZohoConfig
	Auth        AuthConfig
	Store       StoreConfig
	Redis       RedisConfig
	LogLevel    string
}

type DatabaseConfig struct {
	URL      string // DATABASE_URL overrides the discrete fields when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ZohoConfig holds the Zoho Inventory OAuth client and API endpoints
type ZohoConfig struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	OrgID          string
	AccountsURL    string        // e.g. https://accounts.zoho.com (region specific)
	APIBase        string        // e.g. https://www.zohoapis.com/inventory/v1
	SyncInterval   time.Duration // ZOHO_SYNC_INTERVAL: 0 disables the background full sync
	CompareAtLabel string        // custom field label holding the compare-at price
}

// Configured reports whether the OAuth client and organization are set
func (z ZohoConfig) Configured() bool {
	return z.ClientID != "" && z.ClientSecret != "" && z.OrgID != ""
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

type StoreConfig struct {
	SiteURL        string // public base URL, used for the webhook URL and OAuth redirects
	WhatsAppNumber string // fallback when store_settings has no whatsapp_number
	OTPTTL         time.Duration
}

// RedisConfig is optional; an empty Addr keeps the sync lock in-process
type RedisConfig struct {
	Addr     string
	Password string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	syncInterval, err := getDurationOrViper("ZOHO_SYNC_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDurationOrViper("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	otpTTL, err := getDurationOrViper("OTP_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			URL:      strings.TrimSpace(getEnvOrViper("DATABASE_URL", "")),
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "toybox"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Zoho: ZohoConfig{
			ClientID:       strings.TrimSpace(getEnvOrViper("ZOHO_CLIENT_ID", "")),
			ClientSecret:   strings.TrimSpace(getEnvOrViper("ZOHO_CLIENT_SECRET", "")),
			RedirectURI:    strings.TrimSpace(getEnvOrViper("ZOHO_REDIRECT_URI", "")),
			OrgID:          strings.TrimSpace(getEnvOrViper("ZOHO_ORG_ID", "")),
			AccountsURL:    strings.TrimRight(getEnvOrViper("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.com"), "/"),
			APIBase:        strings.TrimRight(getEnvOrViper("ZOHO_API_BASE", "https://www.zohoapis.com/inventory/v1"), "/"),
			SyncInterval:   syncInterval,
			CompareAtLabel: getEnvOrViper("ZOHO_COMPARE_AT_LABEL", "Compare At Price"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnvOrViper("JWT_SECRET", defaultJWTSecret),
			SessionTTL: sessionTTL,
		},
		Store: StoreConfig{
			SiteURL:        strings.TrimRight(getEnvOrViper("SITE_URL", "http://localhost:8080"), "/"),
			WhatsAppNumber: strings.TrimSpace(getEnvOrViper("WHATSAPP_NUMBER", "")),
			OTPTTL:         otpTTL,
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.IsProduction() && cfg.Auth.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDurationOrViper(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getEnvOrViper(key, ""))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
