// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Email is the identity key. The unique index on users.email, not an
// application-level existence check, guarantees a single row per email even
// under concurrent identical checkouts; GetOrCreateUser resolves a lost
// insert race by re-fetching the surviving row.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound).
//   - On other DB errors the raw gorm error is propagated; the service layer
//     translates at its boundary.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
)

// GetUser fetches a user by primary key, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a user by exact email match, or ErrNotFound.
// Callers pass the already-normalized (lowercased, trimmed) address.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user row. A collision on the email unique index
// surfaces as ErrDuplicate so callers can fall back to reuse (checkout) or
// report a taken email (registration).
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetOrCreateUser returns the user owning email, creating fresh from the
// candidate row when absent. The candidate's fields are only written on
// create; when the email already exists the stored profile wins and the
// candidate is discarded, including its address binding.
//
// The second return reports whether a new row was created.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, candidate *domain.User) (*domain.User, bool, error) {
	if u, err := GetUserByEmail(ctx, db, candidate.Email); err == nil {
		return u, false, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	if err := CreateUser(ctx, db, candidate); err != nil {
		if IsDuplicate(err) {
			// Lost the race: a concurrent writer owns the email now.
			u, ferr := GetUserByEmail(ctx, db, candidate.Email)
			if ferr != nil {
				return nil, false, ferr
			}
			return u, false, nil
		}
		return nil, false, err
	}
	return candidate, true, nil
}
