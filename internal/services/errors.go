// Package services defines the business logic for authentication, checkout,
// and order history. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked
// by callers.
//
// These errors are intended for internal use by the service layer; the
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer. No raw store error crosses a service boundary
// unwrapped: anything not matching a value below is wrapped as a
// persistence fault before returning.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// failed password comparison. The two cases are deliberately not
	// distinguished, so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registration targets an email that
	// already owns an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrEmptyCart is returned when a checkout request carries no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidItem is returned when a cart line has a non-positive
	// quantity or a negative unit price.
	ErrInvalidItem = errors.New("invalid cart item")

	// ErrMissingOrderStatus means the PROCESSING reference row is absent.
	// This is a deployment/configuration fault, mapped to a server error,
	// never blamed on the caller.
	ErrMissingOrderStatus = errors.New("order status PROCESSING is not configured")

	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")
)

// UnknownProductError aborts a checkout whose cart references a product id
// that does not exist in the catalog. The offending id is carried so the
// response can name it.
type UnknownProductError struct {
	ProductID uint
}

// Error implements the error interface.
func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %d", e.ProductID)
}

// PersistenceError wraps an unexpected store failure at the service
// boundary. Handlers surface a generic message; the cause stays in logs.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure", e.Op)
}

// Unwrap exposes the underlying store error for logging.
func (e *PersistenceError) Unwrap() error { return e.Err }
