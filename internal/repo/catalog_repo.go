// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the read-only catalog queries behind
// the plain listing endpoints (products, brands, categories, statuses).
// They compose filters and preloads only; no business logic.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
)

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID uint
	BrandID    uint
	ActiveOnly bool
}

// ListProducts returns catalog products with brand, category (and its
// parent), and images preloaded, optionally filtered.
func ListProducts(ctx context.Context, db *gorm.DB, f ProductFilter) ([]domain.Product, error) {
	q := db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Category.Parent").
		Preload("Images")
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.BrandID != 0 {
		q = q.Where("brand_id = ?", f.BrandID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.Product
	err := q.Order("id").Find(&out).Error
	return out, err
}

// GetProduct fetches a single product with associations, or ErrNotFound.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Images").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBrands returns all brands ordered by name.
func ListBrands(ctx context.Context, db *gorm.DB) ([]domain.Brand, error) {
	var out []domain.Brand
	err := db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// ListCategories returns all categories ordered by name, parents preloaded.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).Preload("Parent").Order("name").Find(&out).Error
	return out, err
}

// ListOrderStatuses returns the order-status reference rows.
func ListOrderStatuses(ctx context.Context, db *gorm.DB) ([]domain.OrderStatus, error) {
	var out []domain.OrderStatus
	err := db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}
