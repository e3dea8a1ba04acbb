package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_CONNECTION_URI", "")
	t.Setenv("MONGODB_DBNAME", "")
	t.Setenv("ANALYTICS_TIMEZONE", "")

	cfg, err := NewConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Empty(t, cfg.MongoDB_ConnectionURI)
	assert.Equal(t, "orders", cfg.MongoDB_ColOrders)
	assert.Equal(t, 5, cfg.MongoDB_ConnectTimeout)
	assert.Equal(t, 2000, cfg.Analytics_SlowQueryMs)
	assert.True(t, cfg.RateLimit_Enabled)
}

func TestNewConfig_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("MONGODB_DBNAME=from_file\nMONGODB_COLLECTION_ORDERS=orders_file\n"), 0o600))

	t.Setenv("MONGODB_DBNAME", "from_env")
	// t.Setenv đăng ký khôi phục; Unsetenv để godotenv được phép ghi
	t.Setenv("MONGODB_COLLECTION_ORDERS", "")
	require.NoError(t, os.Unsetenv("MONGODB_COLLECTION_ORDERS"))

	cfg, err := NewConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.MongoDB_DBName)
	assert.Equal(t, "orders_file", cfg.MongoDB_ColOrders)
}

func TestNewConfig_InvalidNumber(t *testing.T) {
	t.Setenv("MONGODB_CONNECT_TIMEOUT", "five")

	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
