// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Address
// model.
//
// Addresses are intentionally never deduplicated: each checkout inserts a
// fresh row even when the line and city match an existing one. Only City is
// deduplicated (see city_repo.go).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
)

// CreateAddress inserts a new address row within cityID.
func CreateAddress(ctx context.Context, db *gorm.DB, line string, cityID uint) (*domain.Address, error) {
	a := &domain.Address{AddressLine: line, CityID: cityID}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAddress fetches an address by primary key with its city preloaded,
// or ErrNotFound.
func GetAddress(ctx context.Context, db *gorm.DB, id uint) (*domain.Address, error) {
	var a domain.Address
	if err := db.WithContext(ctx).Preload("City").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
