// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"slotswap-backend/config"
	"slotswap-backend/internal/db"
)

// Open returns a migrated in-memory SQLite database private to t. It is
// limited to one connection, so inside a transaction only the transaction
// handle may be used.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gormDB
}
