package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, 8, cfg.BalanceWorkers)
	assert.Equal(t, time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, 30*time.Second, cfg.SnapshotLockTTL)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("PORT", "8080")
	t.Setenv("BALANCE_WORKERS", "2")
	t.Setenv("SNAPSHOT_INTERVAL", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2, cfg.BalanceWorkers)
	assert.Equal(t, 15*time.Second, cfg.SnapshotInterval)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "indexeddb")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported STORAGE_DRIVER")
}

func TestDSN(t *testing.T) {
	cfg := &Config{StorageDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "inv", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=inv port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())

	cfg.StorageDriver = "mysql"
	assert.Equal(t, "u:p@tcp(db:5432)/inv?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DSN())
}
