package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "postgres://localhost/slotswap"
auth:
  jwt_secret: "s3cret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "slotswap", cfg.Auth.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 16, cfg.Realtime.QueueSize)
	assert.Equal(t, 25*time.Second, cfg.Realtime.HeartbeatInterval)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSec)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: development
server:
  port: 9000
database:
  driver: postgres
  dsn: "postgres://localhost/slotswap"
auth:
  jwt_secret: "from-file"
`)
	t.Setenv("SLOTSWAP_ENV", "production")
	t.Setenv("SLOTSWAP_DB_DRIVER", "sqlite")
	t.Setenv("SLOTSWAP_DB_DSN", "file:test.db")
	t.Setenv("SLOTSWAP_JWT_SECRET", "from-env")
	t.Setenv("SLOTSWAP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{
			name: "missing dsn",
			body: "auth:\n  jwt_secret: x\n",
		},
		{
			name: "missing secret",
			body: "database:\n  dsn: x\n",
		},
		{
			name: "unknown driver",
			body: "database:\n  driver: mysql\n  dsn: x\nauth:\n  jwt_secret: x\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
