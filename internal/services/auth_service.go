// Package services – AuthService
//
// This file implements the session authenticator: credential verification
// against stored bcrypt hashes, session establishment and teardown through
// the injected session store, and account registration with the same
// normalized City/Address creation the checkout pipeline uses.
//
// Service-level errors (ErrInvalidCredentials, ErrEmailTaken) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently; everything else is wrapped as a persistence fault.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/repo"
	"github.com/tbourn/go-store-backend/internal/session"
)

// AuthService implements login, logout, and registration.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Sessions is the injected token store; its create/lookup/destroy
	// contract is the only session state in the process.
	Sessions session.Store
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, sessions session.Store) *AuthService {
	return &AuthService{DB: db, Sessions: sessions}
}

// RegisterRequest carries the fields of a registration call, pre-binding.
type RegisterRequest struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string

	AddressLine string
	City        string
	PostalCode  string
	Country     string
}

// Login verifies email+password and establishes a new session.
//
// Both "no such email" and "wrong password" collapse into
// ErrInvalidCredentials so the response cannot be used to probe which
// addresses have accounts. Verification always goes through bcrypt's
// constant-contract comparison; stored rows without a hash (guest-checkout
// accounts) can never log in. A successful login creates a fresh session
// and leaves any concurrent sessions for the same user untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	email = normalizeEmail(email)

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", &PersistenceError{Op: "login", Err: err}
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", &PersistenceError{Op: "login", Err: err}
	}
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))
	return u, token, nil
}

// Logout destroys the session behind token. Idempotent: an unknown,
// expired, or empty token is a no-op, never an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Sessions.Destroy(ctx, token); err != nil {
		return &PersistenceError{Op: "logout", Err: err}
	}
	return nil
}

// Register creates a new account: get-or-create City on the normalized
// triple, a fresh Address, and the User with a bcrypt-hashed password, all
// inside one transaction. A duplicate email yields ErrEmailTaken whether it
// was caught by lookup or by the unique index under a concurrent register.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("user.role", domain.RoleCustomer)),
	)
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return &PersistenceError{Op: "register", Err: err}
	}

	cityName, postal, country := normalizePlace(req.City, req.PostalCode, req.Country)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		city, err := repo.GetOrCreateCity(ctx, tx, cityName, postal, country)
		if err != nil {
			return err
		}
		addr, err := repo.CreateAddress(ctx, tx, strings.TrimSpace(req.AddressLine), city.ID)
		if err != nil {
			return err
		}
		u := &domain.User{
			Username:  strings.TrimSpace(req.Username),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Email:     normalizeEmail(req.Email),
			Phone:     strings.TrimSpace(req.Phone),
			Password:  string(hash),
			AddressID: &addr.ID,
			Role:      domain.RoleCustomer,
		}
		if err := repo.CreateUser(ctx, tx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return ErrEmailTaken
		}
		return &PersistenceError{Op: "register", Err: err}
	}
	return nil
}
