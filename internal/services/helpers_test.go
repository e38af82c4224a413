// internal/services/helpers_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/keebworks/keebpos-backend/internal/config"
	"github.com/keebworks/keebpos-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection so concurrent test checkouts serialize at the driver
	// instead of tripping sqlite busy errors.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.CatalogItem{},
		&models.Transaction{},
		&models.TransactionLineItem{},
	))

	return db
}

func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{
		TaxRate:           decimal.RequireFromString("0.12"),
		LowStockThreshold: 10,
		BestSellerLimit:   3,
		MaxImageBytes:     2 * 1024 * 1024,
	}
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seedItem(t *testing.T, catalog *CatalogService, category models.Category, name, price string, quantity int) *models.CatalogItem {
	t.Helper()

	item, err := catalog.PartitionFor(category).Create(&CreateItemRequest{
		Brand:       "Keychron",
		Name:        name,
		Description: "test item",
		Price:       decPtr(price),
		Quantity:    intPtr(quantity),
		Image:       "data:image/png;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	return item
}
