// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and the reference-data seed
// used by development and test environments.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-store-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// EnableTracing attaches the GORM OpenTelemetry plugin so every query shows
// up as a span under the surrounding request trace.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the storefront schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Brand{},
		&domain.Category{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.City{},
		&domain.Address{},
		&domain.User{},
		&domain.OrderStatus{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.PaymentStatus{},
		&domain.Payment{},
		&domain.Idempotency{},
	)
}

// defaultOrderStatuses is the reference set checkout and fulfilment expect.
// PROCESSING must exist before the first checkout; the rest describe the
// fulfilment lifecycle.
var defaultOrderStatuses = []string{
	domain.StatusProcessing,
	"CONFIRMED",
	"SHIPPED",
	"DELIVERED",
	"CANCELLED",
}

// SeedOrderStatuses inserts the default order-status rows when missing.
// Idempotent: existing names are left untouched. Production deployments
// normally manage this table via migrations; the seed keeps dev and test
// databases usable out of the box.
func SeedOrderStatuses(db *gorm.DB) error {
	for _, name := range defaultOrderStatuses {
		var count int64
		if err := db.Model(&domain.OrderStatus{}).
			Where("status_name = ?", name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&domain.OrderStatus{StatusName: name}).Error; err != nil && !IsDuplicate(err) {
			return err
		}
	}
	return nil
}
