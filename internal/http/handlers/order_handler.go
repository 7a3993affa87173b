// Order history HTTP handlers.
//
// This file exposes the read side of orders:
//   - GET /orders       (the caller's orders, newest first)
//   - GET /orders/:id   (one order with its lines)
//
// Both routes sit behind RequireUser. A customer only ever sees their own
// orders; admins may inspect any account via the userid query parameter.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-store-backend/internal/http/middleware"
	"github.com/tbourn/go-store-backend/internal/services"
	"github.com/tbourn/go-store-backend/internal/sysutil"
	"github.com/tbourn/go-store-backend/internal/utils"
)

// ListOrdersResponse wraps the order list payload.
type ListOrdersResponse struct {
	Orders []services.OrderSummary `json:"orders"`
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders
// @Description Returns the caller's orders, most recent first. Admins may pass
// @Description userid to inspect another account, or all=1 for the whole
// @Description store. With history=1 each order carries its full line items;
// @Description otherwise only header fields and the item count are returned.
// @Tags        Orders
// @Produce     json
//
// @Param       userid   query  int     false  "Account to inspect (admin only)"   minimum(1)
// @Param       all      query  string  false  "List every order (admin only)"     example(1)
// @Param       history  query  string  false  "Include line items"                example(1)
//
// @Success     200  {object}  handlers.ListOrdersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Not allowed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	ident := middleware.IdentityFrom(c)

	var (
		orders []services.OrderSummary
		err    error
	)
	switch {
	case sysutil.IsTruthy(c.Query("all")):
		if !ident.IsAdmin() {
			fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot list all orders")
			return
		}
		orders, err = h.orderSvc.ListAll(c.Request.Context())
	default:
		target := ident.UserID
		if q := utils.AtoiDefault(c.Query("userid"), 0); q > 0 && uint(q) != ident.UserID {
			if !ident.IsAdmin() {
				fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot view another user's orders")
				return
			}
			target = uint(q)
		}
		orders, err = h.orderSvc.ListForUser(c.Request.Context(), target)
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "order listing failed")
		return
	}

	if !sysutil.IsTruthy(c.Query("history")) {
		for i := range orders {
			orders[i].Items = nil
		}
	}
	ok(c, http.StatusOK, ListOrdersResponse{Orders: orders})
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Get one order
// @Description Returns one order with its projected line items. Customers can
// @Description only fetch their own orders; admins can fetch any.
// @Tags        Orders
// @Produce     json
//
// @Param       id  path  int  true  "Order ID"  minimum(1)
//
// @Success     200  {object}  services.OrderSummary
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	id := utils.AtoiDefault(c.Param("id"), 0)
	if id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a positive integer")
		return
	}

	sum, err := h.orderSvc.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "order lookup failed")
		return
	}

	// Foreign orders 404 rather than 403 so ids cannot be probed.
	ident := middleware.IdentityFrom(c)
	if sum.UserID != ident.UserID && !ident.IsAdmin() {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		return
	}
	ok(c, http.StatusOK, sum)
}
