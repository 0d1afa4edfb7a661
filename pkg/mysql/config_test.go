package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{User: "ledger", Password: "secret", Host: "db", Port: 3307, DBName: "fund_ledger"}
	assert.Equal(t, "ledger:secret@tcp(db:3307)/fund_ledger?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{DBName: "x", MaxRetries: 3}.WithDefaults()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 3, cfg.MaxRetries, "explicit values are kept")
	assert.Equal(t, 2*time.Second, cfg.RetryInterval)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, parseLogLevel("info"))
	assert.Equal(t, logger.Silent, parseLogLevel("silent"))
	assert.Equal(t, logger.Error, parseLogLevel("verbose"))
}
