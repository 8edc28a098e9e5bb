package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"`

	// Storage: postgres | mysql | sqlite | memory
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBHost        string `mapstructure:"DB_HOST"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`

	// Redis is optional; an empty URL disables the cross-process snapshot lock.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Ledger
	Timezone          string        `mapstructure:"APP_TIMEZONE"`
	BalanceWorkers    int           `mapstructure:"BALANCE_WORKERS"`
	SnapshotInterval  time.Duration `mapstructure:"SNAPSHOT_INTERVAL"`
	SnapshotLockTTL   time.Duration `mapstructure:"SNAPSHOT_LOCK_TTL"`
	LowStockThreshold int64         `mapstructure:"LOW_STOCK_THRESHOLD"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

var drivers = map[string]bool{"postgres": true, "mysql": true, "sqlite": true, "memory": true}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	// Missing .env is fine, the process environment wins anyway.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"PORT":                3000,
		"APP_ENV":             "development",
		"STORAGE_DRIVER":      "postgres",
		"DATABASE_URL":        "",
		"DB_HOST":             "localhost",
		"DB_PORT":             "5432",
		"DB_USER":             "",
		"DB_PASSWORD":         "",
		"DB_NAME":             "inventory",
		"REDIS_URL":           "",
		"APP_TIMEZONE":        "Asia/Jakarta",
		"BALANCE_WORKERS":     8,
		"SNAPSHOT_INTERVAL":   "1m",
		"SNAPSHOT_LOCK_TTL":   "30s",
		"LOW_STOCK_THRESHOLD": 10,
		"LOG_LEVEL":           "info",
	}
	// SetDefault also registers the key, which AutomaticEnv needs for Unmarshal.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func (c *Config) Validate() error {
	if !drivers[c.StorageDriver] {
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.BalanceWorkers <= 0 {
		return fmt.Errorf("BALANCE_WORKERS must be positive, got %d", c.BalanceWorkers)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must be positive, got %s", c.SnapshotInterval)
	}
	return nil
}

// DSN returns DATABASE_URL or assembles one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.StorageDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.Timezone)
	}
}
