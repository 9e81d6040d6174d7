// Package dbtest opens throwaway sqlite databases migrated with every model.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tripdesk/backoffice/pkg/db/models"
)

// Open returns an isolated in-memory database. The pool is capped at one
// connection so transactions see a consistent view; callers must run every
// query inside a transaction through its tx handle.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:tripdesk_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=0"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate models: %v", err)
	}
	return conn
}
