// Package services – OrderHistoryService
//
// This file implements the read-side order-history projection: it
// reconstitutes an order plus its line items with display fields (status
// name, product names, line subtotals) that are derived at read time, never
// stored. The projection is strictly read-only.
package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/repo"
)

// OrderLine is one projected line item. Subtotal is recomputed as
// quantity × price-per-unit on every read, so it always reflects the
// stored values at projection time.
type OrderLine struct {
	ProductID    *uint           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// ShippingAddress is the delivery destination as projected on a single
// order: the snapshot address row joined with its city.
type ShippingAddress struct {
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// OrderSummary is one projected order for display. UserID identifies the
// owning account for server-side access checks and stays out of the body.
// ShippingAddress is populated on single-order fetches only.
type OrderSummary struct {
	UserID          uint             `json:"-"`
	OrderID         uint             `json:"order_id"`
	OrderDate       string           `json:"order_date"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          string           `json:"status"`
	TrackingNumber  string           `json:"tracking_number"`
	ItemCount       int              `json:"item_count"`
	Items           []OrderLine      `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

// OrderHistoryService projects orders for display. Read-only.
type OrderHistoryService struct {
	// DB is the GORM handle used for queries.
	DB *gorm.DB
}

// NewOrderHistoryService constructs an OrderHistoryService.
func NewOrderHistoryService(db *gorm.DB) *OrderHistoryService {
	return &OrderHistoryService{DB: db}
}

// ListForUser returns the user's orders, most recent first, each with its
// projected line items.
func (s *OrderHistoryService) ListForUser(ctx context.Context, userID uint) ([]OrderSummary, error) {
	tr := otel.Tracer("services/OrderHistoryService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))),
	)
	defer span.End()

	orders, err := repo.ListOrdersByUser(ctx, s.DB, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "order history", Err: err}
	}

	out := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		sum, err := s.project(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}

// ListAll returns every order in the store, most recent first. Admin
// back-office listing only; callers enforce the role check.
func (s *OrderHistoryService) ListAll(ctx context.Context) ([]OrderSummary, error) {
	tr := otel.Tracer("services/OrderHistoryService")
	ctx, span := tr.Start(ctx, "ListAll")
	defer span.End()

	orders, err := repo.ListOrders(ctx, s.DB)
	if err != nil {
		return nil, &PersistenceError{Op: "order history", Err: err}
	}

	out := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		sum, err := s.project(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}

// Get returns the projection of a single order with its shipping address,
// or ErrOrderNotFound.
func (s *OrderHistoryService) Get(ctx context.Context, orderID uint) (*OrderSummary, error) {
	tr := otel.Tracer("services/OrderHistoryService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("order.id", int64(orderID))),
	)
	defer span.End()

	o, err := repo.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, &PersistenceError{Op: "order history", Err: err}
	}

	sum, err := s.project(ctx, o)
	if err != nil {
		return nil, err
	}
	if addr, err := repo.GetAddress(ctx, s.DB, o.ShippingAddressID); err == nil {
		sa := &ShippingAddress{AddressLine: addr.AddressLine}
		if addr.City != nil {
			sa.City = addr.City.CityName
			sa.PostalCode = addr.City.PostalCode
			sa.Country = addr.City.Country
		}
		sum.ShippingAddress = sa
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, &PersistenceError{Op: "order history", Err: err}
	}
	return sum, nil
}

// project builds the summary of one order header, joining the status name
// and deriving line subtotals.
func (s *OrderHistoryService) project(ctx context.Context, o *domain.Order) (*OrderSummary, error) {
	items, err := repo.ListOrderItems(ctx, s.DB, o.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "order history", Err: err}
	}

	lines := make([]OrderLine, 0, len(items))
	for _, it := range items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		lines = append(lines, OrderLine{
			ProductID:    it.ProductID,
			ProductName:  name,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
			Subtotal:     it.Subtotal(),
		})
	}

	status := ""
	if o.OrderStatus != nil {
		status = o.OrderStatus.StatusName
	}
	return &OrderSummary{
		UserID:         o.UserID,
		OrderID:        o.ID,
		OrderDate:      o.OrderDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		TotalAmount:    o.TotalAmount,
		Status:         status,
		TrackingNumber: o.TrackingNumber,
		ItemCount:      len(lines),
		Items:          lines,
	}, nil
}
