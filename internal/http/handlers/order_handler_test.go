package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/session"
)

// loginAs registers (email-derived username) and logs the user in, returning
// the session cookie.
func loginAs(t *testing.T, r *gin.Engine, email string) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{
		"username": %q, "email": %q, "password": "correct horse battery staple",
		"address_line": "1 Test St", "city": "London", "postal_code": "X", "country": "UK"
	}`, email, email)
	if w := doJSON(t, r, http.MethodPost, "/register", body); w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	w := doJSON(t, r, http.MethodPost, "/login",
		fmt.Sprintf(`{"email": %q, "password": "correct horse battery staple"}`, email))
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	return sessionCookieOf(t, w)
}

// checkoutAs places one order for email against the seeded product.
func checkoutAs(t *testing.T, r *gin.Engine, email string) uint {
	t.Helper()
	body := fmt.Sprintf(`{
		"contact": {"email": %q},
		"address": {"firstName":"A","lastName":"B","street":"1 Test St","city":"London","postalCode":"X","country":"UK"},
		"totalAmount": 149.90,
		"items": [{"productId": 1, "quantity": 1, "pricePerUnit": 149.90}]
	}`, email)
	w := doJSON(t, r, http.MethodPost, "/checkout", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout %s: %d %s", email, w.Code, w.Body.String())
	}
	var conf struct {
		OrderID uint `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &conf); err != nil {
		t.Fatalf("conf: %v", err)
	}
	return conf.OrderID
}

func setupOrders(t *testing.T) (*gin.Engine, *gorm.DB, session.Store) {
	t.Helper()
	r, db, sessions := newTestRouter(t)
	seedTestProduct(t, db)
	return r, db, sessions
}

func TestListOrders_RequiresAuth(t *testing.T) {
	r, _, _ := setupOrders(t)
	if w := doJSON(t, r, http.MethodGet, "/orders", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestListOrders_OwnOrdersOnlyWithHistoryToggle(t *testing.T) {
	r, _, _ := setupOrders(t)
	ck := loginAs(t, r, "ada@example.com")
	checkoutAs(t, r, "ada@example.com")
	checkoutAs(t, r, "other@example.com") // foreign order

	// Default listing: headers only, items stripped.
	w := doJSON(t, r, http.MethodGet, "/orders", "", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Orders []struct {
			OrderID   uint            `json:"order_id"`
			ItemCount int             `json:"item_count"`
			Items     json.RawMessage `json:"items"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(resp.Orders) != 1 {
		t.Fatalf("expected exactly own order, got %d", len(resp.Orders))
	}
	if resp.Orders[0].ItemCount != 1 {
		t.Fatalf("expected item_count 1, got %d", resp.Orders[0].ItemCount)
	}
	if string(resp.Orders[0].Items) != "null" {
		t.Fatalf("expected items omitted without history=1, got %s", resp.Orders[0].Items)
	}

	// history=1 carries the lines.
	w = doJSON(t, r, http.MethodGet, "/orders?history=1", "", ck)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if string(resp.Orders[0].Items) == "null" {
		t.Fatalf("expected items with history=1")
	}
}

func TestListOrders_ForeignUserIDForbiddenForCustomers(t *testing.T) {
	r, _, _ := setupOrders(t)
	ck := loginAs(t, r, "ada@example.com")

	if w := doJSON(t, r, http.MethodGet, "/orders?userid=999", "", ck); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestListOrders_AllForbiddenForCustomers(t *testing.T) {
	r, _, _ := setupOrders(t)
	ck := loginAs(t, r, "ada@example.com")

	if w := doJSON(t, r, http.MethodGet, "/orders?all=1", "", ck); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestListOrders_AdminSeesEveryOrder(t *testing.T) {
	r, db, _ := setupOrders(t)
	ck := loginAs(t, r, "root@example.com")
	if err := db.Model(&domain.User{}).
		Where("email = ?", "root@example.com").
		Update("role", domain.RoleAdmin).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}
	checkoutAs(t, r, "ada@example.com")
	checkoutAs(t, r, "other@example.com")

	w := doJSON(t, r, http.MethodGet, "/orders?all=1", "", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("list all: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Orders []struct {
			OrderID uint `json:"order_id"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(resp.Orders) != 2 {
		t.Fatalf("expected both buyers' orders, got %d", len(resp.Orders))
	}
}

func TestGetOrder_ForeignOrderIs404(t *testing.T) {
	r, _, _ := setupOrders(t)
	ck := loginAs(t, r, "ada@example.com")
	foreign := checkoutAs(t, r, "other@example.com")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", foreign), "", ck)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign order must 404, got %d", w.Code)
	}
}

func TestGetOrder_OwnOrder(t *testing.T) {
	r, _, _ := setupOrders(t)
	ck := loginAs(t, r, "ada@example.com")
	id := checkoutAs(t, r, "ada@example.com")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", id), "", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
	var sum struct {
		OrderID uint   `json:"order_id"`
		Status  string `json:"status"`
		Items   []struct {
			Subtotal string `json:"subtotal"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("body: %v", err)
	}
	if sum.OrderID != id || sum.Status == "" || len(sum.Items) != 1 {
		t.Fatalf("unexpected projection %+v", sum)
	}
}
