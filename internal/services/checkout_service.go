// Package services – CheckoutService
//
// This file implements the checkout pipeline: the single atomic write that
// turns a cart-like request into a persisted order with its line items,
// creating or reusing the supporting City, Address, and User rows on the
// way. Every step runs inside one transaction scope: either the full
// Order/OrderItem graph (plus any newly created support rows) commits, or
// nothing does; an order with zero items is never visible.
//
// Get-or-create for City and User leans on the store's unique constraints
// rather than check-then-insert: a writer that loses a concurrent race
// detects the violation and re-fetches the surviving row (see the repo
// helpers), so identical simultaneous checkouts converge on one City and
// one User.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/repo"
)

// CheckoutContact is the buyer's contact block.
type CheckoutContact struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// CheckoutAddress is the shipping destination as entered at checkout.
type CheckoutAddress struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

// CheckoutItem is one cart line. PricePerUnit is the price the client saw
// at cart time and is stored verbatim; the catalog price is NOT consulted.
type CheckoutItem struct {
	ProductID    uint
	Quantity     int
	PricePerUnit decimal.Decimal
}

// CheckoutRequest is the full input of one checkout call. TotalAmount is
// the client-declared total, stored verbatim and not recomputed from the
// lines (price-lock at cart time; flagged as a recomputation candidate in
// the tests).
type CheckoutRequest struct {
	Contact     CheckoutContact
	Address     CheckoutAddress
	TotalAmount decimal.Decimal
	Items       []CheckoutItem
}

// OrderConfirmation is the success result of a checkout. UserID identifies
// the buyer account the order was attached to (created or reused); it is for
// server-side bookkeeping and is not part of the response body.
type OrderConfirmation struct {
	OrderID uint   `json:"order_id"`
	Message string `json:"message"`
	UserID  uint   `json:"-"`
}

// CheckoutService executes checkout requests against the record store.
type CheckoutService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{DB: db}
}

// Checkout runs the pipeline:
//
//  1. Normalize and get-or-create the City triple.
//  2. Unconditionally create a fresh Address in it (addresses are
//     per-order, never deduplicated).
//  3. Get-or-create the User by email. On reuse the request's profile
//     fields are discarded and the stored user, including their original
//     address, wins; the step-2 Address then serves only as the order's
//     shipping address. The orphan write is accepted.
//  4. Resolve the PROCESSING status; absence is a configuration fault.
//  5. Create the Order with the declared total.
//  6. Resolve every cart line's product; any unknown id aborts the whole
//     call naming the offender.
//  7. Create one OrderItem per line, in input order.
//
// Any failure at any step rolls the entire transaction back: no City (if
// newly created), Address, User, Order, or OrderItem row survives a failed
// checkout. Reuse hits are not rollback-relevant since nothing was written
// for them.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*OrderConfirmation, error) {
	tr := otel.Tracer("services/CheckoutService")
	ctx, span := tr.Start(ctx, "Checkout",
		trace.WithAttributes(attribute.Int("cart.items", len(req.Items))),
	)
	defer span.End()

	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 || it.PricePerUnit.IsNegative() {
			return nil, ErrInvalidItem
		}
	}

	cityName, postal, country := normalizePlace(req.Address.City, req.Address.PostalCode, req.Address.Country)
	email := normalizeEmail(req.Contact.Email)

	var conf *OrderConfirmation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		city, err := repo.GetOrCreateCity(ctx, tx, cityName, postal, country)
		if err != nil {
			return err
		}

		addr, err := repo.CreateAddress(ctx, tx, strings.TrimSpace(req.Address.Street), city.ID)
		if err != nil {
			return err
		}

		candidate := &domain.User{
			Username:  email,
			FirstName: strings.TrimSpace(req.Contact.FirstName),
			LastName:  strings.TrimSpace(req.Contact.LastName),
			Email:     email,
			Phone:     strings.TrimSpace(req.Contact.Phone),
			AddressID: &addr.ID,
			Role:      domain.RoleCustomer,
		}
		user, _, err := repo.GetOrCreateUser(ctx, tx, candidate)
		if err != nil {
			return err
		}

		status, err := repo.GetOrderStatusByName(ctx, tx, domain.StatusProcessing)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrMissingOrderStatus
			}
			return err
		}

		order, err := repo.CreateOrder(ctx, tx, user.ID, status.ID, addr.ID, req.TotalAmount)
		if err != nil {
			return err
		}

		for _, it := range req.Items {
			if _, err := repo.GetProduct(ctx, tx, it.ProductID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return &UnknownProductError{ProductID: it.ProductID}
				}
				return err
			}
			if _, err := repo.CreateOrderItem(ctx, tx, order.ID, it.ProductID, it.Quantity, it.PricePerUnit); err != nil {
				return err
			}
		}

		span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
		conf = &OrderConfirmation{
			OrderID: order.ID,
			Message: "Order placed successfully",
			UserID:  user.ID,
		}
		return nil
	})
	if err != nil {
		var unknown *UnknownProductError
		switch {
		case errors.As(err, &unknown):
			return nil, unknown
		case errors.Is(err, ErrMissingOrderStatus):
			return nil, ErrMissingOrderStatus
		default:
			return nil, &PersistenceError{Op: "checkout", Err: err}
		}
	}
	return conf, nil
}

// titleCaser matches the original pipeline's locale-agnostic title casing
// of city and country names ("oslo" → "Oslo", "UNITED kingdom" → "United
// Kingdom"). Und keeps the behavior language-independent.
var titleCaser = cases.Title(language.Und)

// normalizePlace trims and title-cases the city/country pair and trims the
// postal code, producing the City natural key.
func normalizePlace(city, postalCode, country string) (string, string, string) {
	return titleCaser.String(strings.TrimSpace(city)),
		strings.TrimSpace(postalCode),
		titleCaser.String(strings.TrimSpace(country))
}

// normalizeEmail trims and lowercases an email address; email equality is
// always on the normalized form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
