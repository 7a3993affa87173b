package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-store-backend/internal/domain"
)

func TestOpenSQLite_MigrateAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), fmt.Sprintf("db_test_%d.db", time.Now().UnixNano()))
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := SeedOrderStatuses(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding is idempotent.
	if err := SeedOrderStatuses(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	statuses, err := ListOrderStatuses(context.Background(), db)
	if err != nil {
		t.Fatalf("list statuses: %v", err)
	}
	seen := map[string]int{}
	for _, s := range statuses {
		seen[s.StatusName]++
	}
	if seen[domain.StatusProcessing] != 1 {
		t.Fatalf("expected exactly one PROCESSING row, got %d (all: %v)", seen[domain.StatusProcessing], seen)
	}
}

func TestListProducts_Filters(t *testing.T) {
	db := newRepoDB(t, &domain.Brand{}, &domain.Category{}, &domain.Product{}, &domain.ProductImage{})
	ctx := context.Background()

	b := domain.Brand{Name: "Clackety"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("brand: %v", err)
	}
	cat := domain.Category{Name: "Peripherals"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}

	rows := []domain.Product{
		{Name: "Keyboard", Price: decimal.NewFromInt(149), IsActive: true, BrandID: &b.ID, CategoryID: &cat.ID},
		{Name: "Mouse", Price: decimal.NewFromInt(49), IsActive: true},
		{Name: "Retired", Price: decimal.NewFromInt(9), IsActive: false},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("product: %v", err)
		}
	}

	active, err := ListProducts(ctx, db, ProductFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(active))
	}

	byCat, err := ListProducts(ctx, db, ProductFilter{CategoryID: cat.ID, ActiveOnly: true})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCat) != 1 || byCat[0].Name != "Keyboard" {
		t.Fatalf("unexpected category filter result: %+v", byCat)
	}
	if byCat[0].Brand == nil || byCat[0].Brand.Name != "Clackety" {
		t.Fatalf("expected brand preloaded, got %+v", byCat[0].Brand)
	}
}
