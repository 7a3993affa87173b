package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-store-backend/internal/domain"
)

func TestOrderHistory_ProjectsLinesWithDerivedSubtotals(t *testing.T) {
	db := newServiceDB(t)
	seedProcessing(t, db)
	p := seedProduct(t, db, "Keyboard", 149)

	req := validRequest(p.ID)
	req.Items = []CheckoutItem{
		{ProductID: p.ID, Quantity: 3, PricePerUnit: decimal.RequireFromString("10.50")},
	}
	req.TotalAmount = decimal.RequireFromString("31.50")

	conf, err := NewCheckoutService(db).Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	hist := NewOrderHistoryService(db)
	sum, err := hist.Get(context.Background(), conf.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sum.Status != domain.StatusProcessing {
		t.Fatalf("expected status name joined, got %q", sum.Status)
	}
	if sum.ItemCount != 1 || len(sum.Items) != 1 {
		t.Fatalf("expected one projected line, got %+v", sum)
	}
	line := sum.Items[0]
	if line.ProductName != "Keyboard" || line.Quantity != 3 {
		t.Fatalf("unexpected line %+v", line)
	}
	if !line.Subtotal.Equal(decimal.RequireFromString("31.50")) {
		t.Fatalf("expected derived subtotal 31.50, got %s", line.Subtotal)
	}
}

func TestOrderHistory_SubtotalReflectsStoredValuesAtReadTime(t *testing.T) {
	db := newServiceDB(t)
	seedProcessing(t, db)
	p := seedProduct(t, db, "Keyboard", 149)

	conf, err := NewCheckoutService(db).Checkout(context.Background(), validRequest(p.ID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// Correct the stored line price; the projection must pick it up because
	// subtotals are derived on read, never persisted.
	if err := db.Model(&domain.OrderItem{}).
		Where("order_id = ?", conf.OrderID).
		Update("price_per_unit", "5.00").Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	sum, err := NewOrderHistoryService(db).Get(context.Background(), conf.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !sum.Items[0].Subtotal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected subtotal recomputed from stored price, got %s", sum.Items[0].Subtotal)
	}
}

func TestOrderHistory_ListNewestFirstAndScoped(t *testing.T) {
	db := newServiceDB(t)
	seedProcessing(t, db)
	p := seedProduct(t, db, "Keyboard", 149)

	svc := NewCheckoutService(db)
	ctx := context.Background()
	first, err := svc.Checkout(ctx, validRequest(p.ID))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.Checkout(ctx, validRequest(p.ID)); err != nil {
		t.Fatalf("second: %v", err)
	}

	// Another buyer's order must not leak in.
	other := validRequest(p.ID)
	other.Contact.Email = "other@example.com"
	if _, err := svc.Checkout(ctx, other); err != nil {
		t.Fatalf("other buyer: %v", err)
	}

	orders, err := NewOrderHistoryService(db).ListForUser(ctx, first.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders for the buyer, got %d", len(orders))
	}
	for _, o := range orders {
		if o.UserID != first.UserID {
			t.Fatalf("foreign order leaked into history: %+v", o)
		}
	}
}

func TestOrderHistory_GetIncludesShippingAddress(t *testing.T) {
	db := newServiceDB(t)
	seedProcessing(t, db)
	p := seedProduct(t, db, "Keyboard", 149)

	conf, err := NewCheckoutService(db).Checkout(context.Background(), validRequest(p.ID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	hist := NewOrderHistoryService(db)
	sum, err := hist.Get(context.Background(), conf.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sa := sum.ShippingAddress
	if sa == nil {
		t.Fatalf("expected shipping address on single-order fetch")
	}
	if sa.AddressLine != "12 Analytical Way" || sa.City != "London" || sa.Country != "United Kingdom" {
		t.Fatalf("unexpected shipping address %+v", *sa)
	}

	// The list projection stays lean: no address join.
	orders, err := hist.ListForUser(context.Background(), conf.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 || orders[0].ShippingAddress != nil {
		t.Fatalf("list must not carry shipping addresses, got %+v", orders)
	}
}

func TestOrderHistory_ListAllSpansBuyers(t *testing.T) {
	db := newServiceDB(t)
	seedProcessing(t, db)
	p := seedProduct(t, db, "Keyboard", 149)

	svc := NewCheckoutService(db)
	ctx := context.Background()
	if _, err := svc.Checkout(ctx, validRequest(p.ID)); err != nil {
		t.Fatalf("first buyer: %v", err)
	}
	other := validRequest(p.ID)
	other.Contact.Email = "other@example.com"
	if _, err := svc.Checkout(ctx, other); err != nil {
		t.Fatalf("second buyer: %v", err)
	}

	all, err := NewOrderHistoryService(db).ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both buyers' orders, got %d", len(all))
	}
	if all[0].UserID == all[1].UserID {
		t.Fatalf("expected orders from distinct accounts, got %+v", all)
	}
}

func TestOrderHistory_GetUnknownOrder(t *testing.T) {
	db := newServiceDB(t)
	if _, err := NewOrderHistoryService(db).Get(context.Background(), 404); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
