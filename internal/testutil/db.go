// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"propertycrm/internal/database"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:crm_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.Connect(dsn, zap.NewNop(), database.Options{Silent: true})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore wraps NewDB in a repository.Store.
func NewStore(t testing.TB) *repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}
