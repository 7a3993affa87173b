package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-store-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetOrCreateCity_CreatesOnce(t *testing.T) {
	db := newRepoDB(t, &domain.City{})
	ctx := context.Background()

	first, err := GetOrCreateCity(ctx, db, "Oslo", "0150", "Norway")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", first)
	}

	second, err := GetOrCreateCity(ctx, db, "Oslo", "0150", "Norway")
	if err != nil {
		t.Fatalf("reuse: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same city row, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&domain.City{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 city, got %d", count)
	}
}

func TestGetOrCreateCity_DistinctPostalCodesAreDistinctRows(t *testing.T) {
	db := newRepoDB(t, &domain.City{})
	ctx := context.Background()

	a, err := GetOrCreateCity(ctx, db, "Oslo", "0150", "Norway")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := GetOrCreateCity(ctx, db, "Oslo", "0151", "Norway")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct rows for distinct postal codes")
	}
}

func TestGetOrCreateCity_LostRaceRefetches(t *testing.T) {
	db := newRepoDB(t, &domain.City{})
	ctx := context.Background()

	// Simulate the losing writer: the row appears between its lookup and
	// its insert, so the insert hits the unique index.
	winner := domain.City{CityName: "Bergen", PostalCode: "5003", Country: "Norway"}
	if err := db.Create(&winner).Error; err != nil {
		t.Fatalf("seed winner: %v", err)
	}
	loser := domain.City{CityName: "Bergen", PostalCode: "5003", Country: "Norway"}
	if err := db.Create(&loser).Error; !IsDuplicate(err) {
		t.Fatalf("expected duplicate violation, got %v", err)
	}

	got, err := GetOrCreateCity(ctx, db, "Bergen", "5003", "Norway")
	if err != nil {
		t.Fatalf("get-or-create after race: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected surviving row %d, got %d", winner.ID, got.ID)
	}
}
