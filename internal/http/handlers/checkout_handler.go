// Checkout HTTP handler.
//
// This file exposes the storefront's single write endpoint:
//   - POST /checkout   (atomically place an order)
//
// The handler binds the cart payload, hands it to the checkout service, and
// maps the service's error taxonomy onto HTTP statuses. Client-caused
// failures (empty cart, bad line, unknown product) are 400s naming the
// problem; a missing reference status or a store failure is a 500 that never
// leaks persistence internals.
//
// With an Idempotency-Key header the endpoint is safe to retry: the first
// committed attempt records its order under (caller, "checkout", key), and a
// replay within the TTL returns that order id without touching the pipeline.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/http/middleware"
	"github.com/tbourn/go-store-backend/internal/repo"
	"github.com/tbourn/go-store-backend/internal/services"
)

//
// DTOs
//

// CheckoutContactDTO is the buyer contact block of the checkout payload.
type CheckoutContactDTO struct {
	Email string `json:"email" binding:"required,email" example:"ada@example.com"`
}

// CheckoutAddressDTO is the shipping block of the checkout payload. The
// buyer's name and phone ride along with the address, matching the
// storefront's checkout form.
type CheckoutAddressDTO struct {
	FirstName  string `json:"firstName" binding:"required" example:"Ada"`
	LastName   string `json:"lastName" binding:"required" example:"Lovelace"`
	Phone      string `json:"phone" example:"+44 20 7946 0958"`
	Street     string `json:"street" binding:"required" example:"12 Analytical Way"`
	City       string `json:"city" binding:"required" example:"London"`
	PostalCode string `json:"postalCode" binding:"required" example:"EC1A 1BB"`
	Country    string `json:"country" binding:"required" example:"United Kingdom"`
}

// CheckoutItemDTO is one cart line of the checkout payload.
type CheckoutItemDTO struct {
	ProductID    uint            `json:"productId" binding:"required" example:"7"`
	Quantity     int             `json:"quantity" binding:"required" example:"2"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit" example:"149.90"`
}

// CheckoutRequestDTO is the JSON payload for placing an order.
type CheckoutRequestDTO struct {
	Contact     CheckoutContactDTO `json:"contact" binding:"required"`
	Address     CheckoutAddressDTO `json:"address" binding:"required"`
	TotalAmount decimal.Decimal    `json:"totalAmount" example:"299.80"`
	Items       []CheckoutItemDTO  `json:"items" binding:"required"`
}

// toService maps the wire payload onto the service request.
func (r CheckoutRequestDTO) toService() services.CheckoutRequest {
	items := make([]services.CheckoutItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, services.CheckoutItem{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}
	return services.CheckoutRequest{
		Contact: services.CheckoutContact{
			Email:     r.Contact.Email,
			FirstName: r.Address.FirstName,
			LastName:  r.Address.LastName,
			Phone:     r.Address.Phone,
		},
		Address: services.CheckoutAddress{
			Street:     r.Address.Street,
			City:       r.Address.City,
			PostalCode: r.Address.PostalCode,
			Country:    r.Address.Country,
		},
		TotalAmount: r.TotalAmount,
		Items:       items,
	}
}

// nowUTC is the replay-window clock.
func nowUTC() time.Time { return time.Now().UTC() }

//
// Handler
//

// Checkout godoc
// @ID          checkout
// @Summary     Place an order
// @Description Atomically persists an order with its line items, creating or reusing
// @Description the city and buyer account behind it. Works for guests and logged-in
// @Description users alike; the buyer is keyed by the contact email.
// @Description Retries carrying the same Idempotency-Key return the original order.
// @Tags        Checkout
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Safe-retry key"  example(ck-7f3a)
// @Param       body             body    handlers.CheckoutRequestDTO  true  "Cart payload"
//
// @Success     201  {object}  services.OrderConfirmation
// @Success     200  {object}  services.OrderConfirmation  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / unknown product"
// @Failure     500  {object}  handlers.ErrorResponse  "Configuration or internal error"
// @Router      /checkout [post]
func (h *Handlers) Checkout(c *gin.Context) {
	var req CheckoutRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid checkout payload")
		return
	}

	ctx := c.Request.Context()
	idemKey, hasKey := middleware.GetIdempotencyKey(c)

	// Serve a recorded replay before running the pipeline again.
	if hasKey {
		if rec, err := repo.GetIdempotency(ctx, h.db, middleware.IdempotencyUserKey(c),
			domain.IdempotencyScopeCheckout, idemKey, nowUTC()); err == nil {
			ok(c, http.StatusOK, services.OrderConfirmation{
				OrderID: rec.OrderID,
				Message: "Order placed successfully",
			})
			return
		}
	}

	conf, err := h.checkoutSvc.Checkout(ctx, req.toService())
	if err != nil {
		var unknown *services.UnknownProductError
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			middleware.ObserveCheckoutRejected("empty_cart")
			fail(c, http.StatusBadRequest, ErrCodeEmptyCart, "cart is empty")
		case errors.Is(err, services.ErrInvalidItem):
			middleware.ObserveCheckoutRejected("invalid_item")
			fail(c, http.StatusBadRequest, ErrCodeInvalidItem, "cart item has invalid quantity or price")
		case errors.As(err, &unknown):
			middleware.ObserveCheckoutRejected("unknown_product")
			fail(c, http.StatusBadRequest, ErrCodeUnknownProduct, unknown.Error())
		case errors.Is(err, services.ErrMissingOrderStatus):
			middleware.ObserveCheckoutRejected("config")
			fail(c, http.StatusInternalServerError, ErrCodeConfiguration, "order processing is not configured")
		default:
			middleware.ObserveCheckoutRejected("persistence")
			fail(c, http.StatusInternalServerError, ErrCodeCheckoutFailed, "checkout failed")
		}
		return
	}

	// Record the result for safe retries. Best effort: a race with a
	// concurrent retry already recorded the same outcome.
	if hasKey {
		if _, err := repo.CreateIdempotency(ctx, h.db, middleware.IdempotencyUserKey(c),
			domain.IdempotencyScopeCheckout, idemKey, conf.OrderID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
		}
	}

	middleware.ObserveOrderPlaced()
	ok(c, http.StatusCreated, conf)
}
