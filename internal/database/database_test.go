package database

import (
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePoolDefaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "portal", DBPassword: "pw", DBName: "jharkhand"}
	assert.Equal(t, "host=db port=5432 user=portal password=pw dbname=jharkhand sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}
