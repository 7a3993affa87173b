package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/http/middleware"
)

func seedTestProduct(t *testing.T, db *gorm.DB) domain.Product {
	t.Helper()
	p := domain.Product{Name: "Keyboard", Price: decimal.RequireFromString("149.90"), IsActive: true, StockQuantity: 5}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

const checkoutBody = `{
	"contact": {"email": "ada@example.com"},
	"address": {
		"firstName": "Ada",
		"lastName": "Lovelace",
		"phone": "+44 20 7946 0958",
		"street": "12 Analytical Way",
		"city": "London",
		"postalCode": "EC1A 1BB",
		"country": "United Kingdom"
	},
	"totalAmount": 149.90,
	"items": [{"productId": 1, "quantity": 1, "pricePerUnit": 149.90}]
}`

func TestCheckout_Created(t *testing.T) {
	r, db, _ := newTestRouter(t)
	seedTestProduct(t, db)

	w := doJSON(t, r, http.MethodPost, "/checkout", checkoutBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", w.Code, w.Body.String())
	}
	var conf struct {
		OrderID uint   `json:"order_id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &conf); err != nil {
		t.Fatalf("body: %v", err)
	}
	if conf.OrderID == 0 || conf.Message == "" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
}

func TestCheckout_UnknownProductIs400(t *testing.T) {
	r, _, _ := newTestRouter(t) // no products seeded

	w := doJSON(t, r, http.MethodPost, "/checkout", checkoutBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.Code != ErrCodeUnknownProduct {
		t.Fatalf("expected %q, got %q", ErrCodeUnknownProduct, resp.Code)
	}
}

func TestCheckout_MissingStatusIs500ConfigFault(t *testing.T) {
	r, db, _ := newTestRouter(t)
	seedTestProduct(t, db)
	if err := db.Where("1 = 1").Delete(&domain.OrderStatus{}).Error; err != nil {
		t.Fatalf("drop statuses: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/checkout", checkoutBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.Code != ErrCodeConfiguration {
		t.Fatalf("expected %q, got %q", ErrCodeConfiguration, resp.Code)
	}
}

func TestCheckout_EmptyCartIs400(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body := `{
		"contact": {"email": "ada@example.com"},
		"address": {"firstName":"Ada","lastName":"L","street":"s","city":"c","postalCode":"p","country":"n"},
		"totalAmount": 0,
		"items": []
	}`
	w := doJSON(t, r, http.MethodPost, "/checkout", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
	}
}

func TestCheckout_IdempotentReplayReturnsOriginalOrder(t *testing.T) {
	r, db, _ := newTestRouter(t)
	seedTestProduct(t, db)

	post := func() *struct {
		Code    int
		OrderID uint
	} {
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(checkoutBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderIdempotencyKey, "ck-retry-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var conf struct {
			OrderID uint `json:"order_id"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &conf)
		return &struct {
			Code    int
			OrderID uint
		}{w.Code, conf.OrderID}
	}

	first := post()
	if first.Code != http.StatusCreated || first.OrderID == 0 {
		t.Fatalf("first attempt: code=%d order=%d", first.Code, first.OrderID)
	}

	second := post()
	if second.Code != http.StatusOK {
		t.Fatalf("replay should be 200, got %d", second.Code)
	}
	if second.OrderID != first.OrderID {
		t.Fatalf("replay must return the original order: %d vs %d", second.OrderID, first.OrderID)
	}

	var orders int64
	if err := db.Model(&domain.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if orders != 1 {
		t.Fatalf("replay must not materialize a second order, got %d", orders)
	}
}
