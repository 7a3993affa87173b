// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// aggregate: status lookup, order/item creation (always inside the caller's
// transaction handle), and the read queries the history projection uses.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
)

// GetOrderStatusByName fetches an order status row by exact name, or
// ErrNotFound. Checkout treats a miss as a configuration fault.
func GetOrderStatusByName(ctx context.Context, db *gorm.DB, name string) (*domain.OrderStatus, error) {
	var s domain.OrderStatus
	err := db.WithContext(ctx).Where("status_name = ?", name).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateOrder inserts the order header. OrderDate is stamped UTC at
// creation and is immutable thereafter.
func CreateOrder(ctx context.Context, db *gorm.DB, userID, statusID, shippingAddressID uint, total decimal.Decimal) (*domain.Order, error) {
	o := &domain.Order{
		UserID:            userID,
		OrderDate:         time.Now().UTC(),
		TotalAmount:       total,
		OrderStatusID:     statusID,
		ShippingAddressID: shippingAddressID,
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// CreateOrderItem inserts one cart line for orderID. Input order is
// preserved implicitly by insertion sequence; no ordinal column exists.
func CreateOrderItem(ctx context.Context, db *gorm.DB, orderID, productID uint, quantity int, pricePerUnit decimal.Decimal) (*domain.OrderItem, error) {
	pid := productID
	it := &domain.OrderItem{
		OrderID:      orderID,
		ProductID:    &pid,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// GetOrder fetches an order header by id with its status preloaded, or
// ErrNotFound.
func GetOrder(ctx context.Context, db *gorm.DB, id uint) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Preload("OrderStatus").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrdersByUser returns all orders for userID ordered by order date
// descending (most recent first), statuses preloaded.
func ListOrdersByUser(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("OrderStatus").
		Where("user_id = ?", userID).
		Order("order_date desc").
		Find(&out).Error
	return out, err
}

// ListOrders returns every order header, newest first. Backs the plain
// read-only listing endpoint.
func ListOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("OrderStatus").
		Order("order_date desc").
		Find(&out).Error
	return out, err
}

// ListOrderItems returns the line items of orderID in insertion order with
// products preloaded for display names.
func ListOrderItems(ctx context.Context, db *gorm.DB, orderID uint) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("id").
		Find(&out).Error
	return out, err
}
