// Package dbtest opens in-memory SQLite databases with the full schema for
// repository and service tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/database/database"
	"github.com/festy23/stagegate/internal/database/schema"
)

// New returns a migrated in-memory database closed at test cleanup.
//
// The pool is pinned to one connection: every goroutine shares the same
// in-memory database and transactions serialize on the connection.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(schema.Models()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Logger returns a no-op logger for tests.
func Logger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
