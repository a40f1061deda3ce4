// Package repotest opens throwaway in-memory databases for tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/sunu-rekolt/marketplace/pkg/db"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=private"
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewProfile(t testing.TB, db *gorm.DB, role, phone string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Phone:        phone,
		PasswordHash: "x",
		Role:         role,
		FullName:     "Awa " + role,
		Location:     "Thiès",
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func NewProduct(t testing.TB, db *gorm.DB, farmerID uuid.UUID, name string, price int64, approved bool) *models.Product {
	t.Helper()
	p := &models.Product{
		FarmerID:   farmerID,
		Name:       name,
		Price:      price,
		Quantity:   100,
		Unit:       "kg",
		Category:   models.CategoryVegetables,
		IsApproved: approved,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Backdate moves an order's created_at, for time series tests.
func Backdate(t testing.TB, db *gorm.DB, orderID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).UpdateColumn("created_at", at.UTC()).Error)
}

// FailInserts makes every insert into table fail with err.
func FailInserts(t testing.TB, db *gorm.DB, table string, err error) {
	t.Helper()
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("repotest:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}))
}
