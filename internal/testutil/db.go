// Package testutil provides an in-memory store for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/infrastructure/database"
	"github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated, isolated in-memory sqlite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := database.NewSQLiteDB(dsn, "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewTenant stores a tenant and returns a context scoped to it.
func NewTenant(t testing.TB, db *gorm.DB, name string) (context.Context, *entity.Tenant) {
	t.Helper()

	tenant := &entity.Tenant{
		Name:     name,
		Slug:     uuid.NewString(),
		Settings: entity.DefaultTenantSettings(),
	}
	require.NoError(t, db.Create(tenant).Error)
	return repository.WithTenant(context.Background(), tenant.ID), tenant
}
