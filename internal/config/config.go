package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ims-storefront-bridge/internal/application"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port     string
	AppURL   string
	LogLevel string

	Mongo      MongoConfig
	Redis      RedisConfig
	Shopify    ShopifyConfig
	Install    InstallConfig
	IMS        IMSConfig
	Sync       SyncConfig
	EncryptKey string
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ShopifyConfig holds the storefront app credentials
type ShopifyConfig struct {
	APIKey     string
	APISecret  string
	Scopes     []string
	APIVersion string
	Retries    int
}

// InstallConfig holds installation handshake settings
type InstallConfig struct {
	SessionTTL         time.Duration
	TimestampTolerance time.Duration
	// MemorySessions allows process-local sessions when REDIS_ADDR is empty.
	// Only valid for a single instance.
	MemorySessions bool
}

// IMSConfig holds IMS connection settings
type IMSConfig struct {
	AuthURL           string
	APIURL            string
	ClientID          string
	ClientSecret      string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// SyncConfig holds catalog sync settings
type SyncConfig struct {
	IntegrationKey string
	SellerNumber   string
	Concurrency    int
	ImageMode      string
	APIToken       string
}

// Load reads configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		AppURL:   strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "storefront_bridge"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Shopify: ShopifyConfig{
			APIKey:     os.Getenv("SHOPIFY_API_KEY"),
			APISecret:  os.Getenv("SHOPIFY_API_SECRET"),
			Scopes:     splitList(getEnv("SHOPIFY_SCOPES", "read_orders,write_products")),
			APIVersion: getEnv("SHOPIFY_API_VERSION", "2024-04"),
		},
		IMS: IMSConfig{
			AuthURL:      getEnv("IMS_AUTH_URL", "https://auth.thetis-ims.com/oauth2/token"),
			APIURL:       getEnv("IMS_API_URL", "https://api.thetis-ims.com/2/"),
			ClientID:     os.Getenv("IMS_CLIENT_ID"),
			ClientSecret: os.Getenv("IMS_CLIENT_SECRET"),
			APIKey:       os.Getenv("IMS_API_KEY"),
		},
		Sync: SyncConfig{
			IntegrationKey: getEnv("SELLER_INTEGRATION_KEY", "ShopifyIntegration"),
			SellerNumber:   os.Getenv("SELLER_NUMBER"),
			ImageMode:      getEnv("SYNC_IMAGE_MODE", application.ImageModeEmbedded),
			APIToken:       os.Getenv("SYNC_API_TOKEN"),
		},
		EncryptKey: os.Getenv("ENCRYPTION_KEY"),
	}

	var err error
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Shopify.Retries, err = getInt("SHOPIFY_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.Install.SessionTTL, err = getDuration("INSTALL_SESSION_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Install.TimestampTolerance, err = getDuration("INSTALL_TIMESTAMP_TOLERANCE", time.Hour); err != nil {
		return nil, err
	}
	if cfg.Install.MemorySessions, err = getBool("INSTALL_MEMORY_SESSIONS", false); err != nil {
		return nil, err
	}
	if cfg.IMS.PageSize, err = getInt("IMS_PAGE_SIZE", 0); err != nil {
		return nil, err
	}
	if cfg.IMS.RequestsPerSecond, err = getFloat("IMS_REQUESTS_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if cfg.IMS.Timeout, err = getDuration("IMS_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Sync.Concurrency, err = getInt("SYNC_CONCURRENCY", 1); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	var missing []string
	if c.EncryptKey == "" {
		missing = append(missing, "ENCRYPTION_KEY")
	}
	if c.Shopify.APIKey == "" {
		missing = append(missing, "SHOPIFY_API_KEY")
	}
	if c.Shopify.APISecret == "" {
		missing = append(missing, "SHOPIFY_API_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be at least 1, got %d", c.Sync.Concurrency)
	}
	if c.Sync.ImageMode != application.ImageModeEmbedded && c.Sync.ImageMode != application.ImageModeAttach {
		return fmt.Errorf("SYNC_IMAGE_MODE must be %q or %q, got %q", application.ImageModeEmbedded, application.ImageModeAttach, c.Sync.ImageMode)
	}
	if c.IMS.PageSize < 0 {
		return fmt.Errorf("IMS_PAGE_SIZE must not be negative, got %d", c.IMS.PageSize)
	}
	return nil
}

// ValidateIMS checks the settings needed by binaries that run a sync.
func (c *Config) ValidateIMS() error {
	var missing []string
	if c.IMS.ClientID == "" {
		missing = append(missing, "IMS_CLIENT_ID")
	}
	if c.IMS.ClientSecret == "" {
		missing = append(missing, "IMS_CLIENT_SECRET")
	}
	if c.IMS.APIKey == "" {
		missing = append(missing, "IMS_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
