package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Stores  []StoreConfig
	Sync    SyncConfig
	MongoDB MongoDBConfig
	Sheets  SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig holds the credentials and defaults for one Shopify storefront.
type StoreConfig struct {
	Name          string
	Domain        string
	AccessToken   string
	LocationID    string
	WebhookSecret string
}

// SyncConfig holds reconciliation and scheduler settings.
type SyncConfig struct {
	APIVersion   string
	AppID        string
	CronSchedule string
	CronSecret   string
	Concurrency  int
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig configures the optional Google Sheets audit sink. Both fields
// empty means the sink is disabled.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the audit sink should be wired up.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Stores: []StoreConfig{
			{
				Name:          getenvWithDefault("SHOPIFY_STORE_ONE_NAME", "store-one"),
				Domain:        os.Getenv("SHOPIFY_STORE_ONE_URL"),
				AccessToken:   os.Getenv("SHOPIFY_STORE_ONE_ACCESS_TOKEN"),
				LocationID:    os.Getenv("SHOPIFY_STORE_ONE_LOCATION_ID"),
				WebhookSecret: os.Getenv("SHOPIFY_STORE_ONE_WEBHOOK_SECRET"),
			},
			{
				Name:          getenvWithDefault("SHOPIFY_STORE_TWO_NAME", "store-two"),
				Domain:        os.Getenv("SHOPIFY_STORE_TWO_URL"),
				AccessToken:   os.Getenv("SHOPIFY_STORE_TWO_ACCESS_TOKEN"),
				LocationID:    os.Getenv("SHOPIFY_STORE_TWO_LOCATION_ID"),
				WebhookSecret: os.Getenv("SHOPIFY_STORE_TWO_WEBHOOK_SECRET"),
			},
		},
		Sync: SyncConfig{
			APIVersion:   getenvWithDefault("SHOPIFY_API_VERSION", "2025-01"),
			AppID:        getenvWithDefault("SHOPIFY_APP_ID", "inventory_sync"),
			CronSchedule: getenvWithDefault("SYNC_CRON_SCHEDULE", "0 */6 * * *"),
			CronSecret:   os.Getenv("CRON_SECRET"),
			Concurrency:  4,
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stocksync"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEETS_AUDIT_SPREADSHEET_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if len(c.Stores) == 0 {
		return errors.New("at least one Shopify store must be configured")
	}

	for i, store := range c.Stores {
		switch {
		case store.Name == "":
			return fmt.Errorf("store %d: name must not be empty", i+1)
		case store.Domain == "":
			return fmt.Errorf("store %q: shop domain must be provided", store.Name)
		case store.AccessToken == "":
			return fmt.Errorf("store %q: access token must be provided", store.Name)
		case store.WebhookSecret == "":
			return fmt.Errorf("store %q: webhook secret must be provided", store.Name)
		}
		// LocationID is optional at this level; a per-product StoreLink may
		// supply it per sync. Both absent is reported at sync time.
	}

	if c.Sync.APIVersion == "" {
		return errors.New("SHOPIFY_API_VERSION must not be empty")
	}

	if c.Sync.CronSchedule == "" {
		return errors.New("SYNC_CRON_SCHEDULE must be provided")
	}

	if c.Sync.CronSecret == "" {
		return errors.New("CRON_SECRET must be provided")
	}

	if c.Sync.Concurrency <= 0 {
		c.Sync.Concurrency = 1
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	return nil
}

// StoreByName returns the configured store with the given name.
func (c *Config) StoreByName(name string) (StoreConfig, bool) {
	for _, store := range c.Stores {
		if store.Name == name {
			return store, true
		}
	}
	return StoreConfig{}, false
}

// StoreByDomain matches a claimed shop domain against the configured stores.
func (c *Config) StoreByDomain(domain string) (StoreConfig, bool) {
	for _, store := range c.Stores {
		if store.Domain == domain {
			return store, true
		}
	}
	return StoreConfig{}, false
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
