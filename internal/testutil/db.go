package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"blogicum/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns an isolated in-memory SQLite database with the full schema migrated and
// foreign keys enforced. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	db.Logger = db.Logger.LogMode(logger.Silent)

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
