// Catalog HTTP handlers.
//
// This file exposes the public, read-only catalog endpoints:
//   - GET /products      (active products; filter by category or brand)
//   - GET /products/:id  (one product with its associations)
//   - GET /brands
//   - GET /categories
//   - GET /statuses      (order status reference list)
//
// Catalog reads go straight to the repository; there is no business logic to
// interpose a service for.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/repo"
	"github.com/tbourn/go-store-backend/internal/utils"
)

// ListProductsResponse wraps the product list payload.
type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products
// @Description Returns active catalog products with brand, category, and images.
// @Tags        Catalog
// @Produce     json
//
// @Param       category  query  int  false  "Filter by category id"  minimum(1)
// @Param       brand     query  int  false  "Filter by brand id"     minimum(1)
//
// @Success     200  {object}  handlers.ListProductsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	f := repo.ProductFilter{ActiveOnly: true}
	if v := utils.AtoiDefault(c.Query("category"), 0); v > 0 {
		f.CategoryID = uint(v)
	}
	if v := utils.AtoiDefault(c.Query("brand"), 0); v > 0 {
		f.BrandID = uint(v)
	}

	products, err := repo.ListProducts(c.Request.Context(), h.db, f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "product listing failed")
		return
	}
	ok(c, http.StatusOK, ListProductsResponse{Products: products})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get one product
// @Description Returns a single product with brand, category, and images.
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  int  true  "Product ID"  minimum(1)
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	id := utils.AtoiDefault(c.Param("id"), 0)
	if id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a positive integer")
		return
	}

	p, err := repo.GetProduct(c.Request.Context(), h.db, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "product lookup failed")
		return
	}
	ok(c, http.StatusOK, p)
}

// ListBrands godoc
// @ID          listBrands
// @Summary     List brands
// @Tags        Catalog
// @Produce     json
//
// @Success     200  {array}   domain.Brand
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /brands [get]
func (h *Handlers) ListBrands(c *gin.Context) {
	brands, err := repo.ListBrands(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "brand listing failed")
		return
	}
	ok(c, http.StatusOK, brands)
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Tags        Catalog
// @Produce     json
//
// @Success     200  {array}   domain.Category
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := repo.ListCategories(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "category listing failed")
		return
	}
	ok(c, http.StatusOK, categories)
}

// ListOrderStatuses godoc
// @ID          listOrderStatuses
// @Summary     List order statuses
// @Description Returns the order status reference rows (PROCESSING, SHIPPED, …).
// @Tags        Catalog
// @Produce     json
//
// @Success     200  {array}   domain.OrderStatus
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /statuses [get]
func (h *Handlers) ListOrderStatuses(c *gin.Context) {
	statuses, err := repo.ListOrderStatuses(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "status listing failed")
		return
	}
	ok(c, http.StatusOK, statuses)
}
