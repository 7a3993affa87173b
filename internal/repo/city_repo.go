// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the City model.
//
// Cities are deduplicated on the full (city_name, postal_code, country)
// triple. The composite unique index is the source of truth: the
// get-or-create helper treats a lost insert race as "someone else created
// it" and re-fetches rather than erroring, so two concurrent checkouts for
// the same triple always converge on one surviving row.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
)

// GetCity fetches a city by its natural key, or ErrNotFound.
func GetCity(ctx context.Context, db *gorm.DB, name, postalCode, country string) (*domain.City, error) {
	var c domain.City
	err := db.WithContext(ctx).
		Where("city_name = ? AND postal_code = ? AND country = ?", name, postalCode, country).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreateCity returns the city row for the triple, creating it when
// absent. Callers pass already-normalized values (trimmed, title-cased);
// normalization lives in the service layer.
//
// Race behavior: a concurrent writer that commits the same triple first
// makes our insert fail on the unique index; we then re-fetch and return
// the winner's row. Any other DB error is returned as-is.
func GetOrCreateCity(ctx context.Context, db *gorm.DB, name, postalCode, country string) (*domain.City, error) {
	if c, err := GetCity(ctx, db, name, postalCode, country); err == nil {
		return c, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	c := &domain.City{CityName: name, PostalCode: postalCode, Country: country}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if IsDuplicate(err) {
			return GetCity(ctx, db, name, postalCode, country)
		}
		return nil, err
	}
	return c, nil
}
