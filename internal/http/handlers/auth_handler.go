// Authentication HTTP handlers.
//
// This file exposes REST endpoints for account and session management:
//   - POST   /login      (verify credentials, set session cookie)
//   - POST   /logout     (destroy session, clear cookie)
//   - POST   /register   (create an account)
//   - GET    /me         (current user profile)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. The session token travels only in
// an HttpOnly cookie; it never appears in a response body.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/http/middleware"
	"github.com/tbourn/go-store-backend/internal/repo"
	"github.com/tbourn/go-store-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AuthService defines credential and session operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Login verifies email+password and returns the user and a fresh
	// session token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Logout destroys the session behind token; unknown tokens are a no-op.
	Logout(ctx context.Context, token string) error
	// Register creates a new customer account with its address.
	Register(ctx context.Context, req services.RegisterRequest) error
}

// CheckoutService defines the checkout pipeline consumed by HTTP handlers.
type CheckoutService interface {
	// Checkout atomically persists an order with its items, creating or
	// reusing City, Address, and User rows as needed.
	Checkout(ctx context.Context, req services.CheckoutRequest) (*services.OrderConfirmation, error)
}

// OrderHistoryService defines the read-side order projection consumed by
// HTTP handlers.
type OrderHistoryService interface {
	// ListForUser returns the user's orders, most recent first.
	ListForUser(ctx context.Context, userID uint) ([]services.OrderSummary, error)
	// ListAll returns every order in the store, most recent first.
	ListAll(ctx context.Context) ([]services.OrderSummary, error)
	// Get returns one projected order or services.ErrOrderNotFound.
	Get(ctx context.Context, orderID uint) (*services.OrderSummary, error)
}

//
// Handler wiring
//

// CookieOptions controls how the session cookie is issued and cleared.
type CookieOptions struct {
	// Name is the cookie name, e.g. "sessionid".
	Name string
	// TTL bounds the cookie Max-Age; it should match the session store TTL.
	TTL time.Duration
	// Secure marks the cookie Secure; enable when serving HTTPS.
	Secure bool
}

// Handlers groups HTTP endpoints for auth, checkout, orders, and the catalog.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic; the DB handle is used only for catalog reads
// and idempotency records.
type Handlers struct {
	db          *gorm.DB
	authSvc     AuthService
	checkoutSvc CheckoutService
	orderSvc    OrderHistoryService
	cookie      CookieOptions
	idemTTL     time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(db *gorm.DB, authSvc AuthService, checkoutSvc CheckoutService, orderSvc OrderHistoryService, cookie CookieOptions, idemTTL time.Duration) *Handlers {
	return &Handlers{
		db:          db,
		authSvc:     authSvc,
		checkoutSvc: checkoutSvc,
		orderSvc:    orderSvc,
		cookie:      cookie,
		idemTTL:     idemTTL,
	}
}

//
// DTOs
//

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse battery staple"`
}

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=1,max=150" example:"ada"`
	FirstName string `json:"first_name" example:"Ada"`
	LastName  string `json:"last_name" example:"Lovelace"`
	Email     string `json:"email" binding:"required,email" example:"ada@example.com"`
	Phone     string `json:"phone" example:"+44 20 7946 0958"`
	Password  string `json:"password" binding:"required,min=8" example:"correct horse battery staple"`

	AddressLine string `json:"address_line" binding:"required" example:"12 Analytical Way"`
	City        string `json:"city" binding:"required" example:"London"`
	PostalCode  string `json:"postal_code" binding:"required" example:"EC1A 1BB"`
	Country     string `json:"country" binding:"required" example:"United Kingdom"`
}

// UserProfile is the public projection of an account returned by login and /me.
type UserProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// profileOf projects a stored user into its public shape.
func profileOf(u *domain.User) UserProfile {
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
	}
}

// setSessionCookie issues the session cookie on the response. HttpOnly is
// always on; the token must not be readable from scripts.
func (h *Handlers) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
}

// clearSessionCookie expires the session cookie on the response.
func (h *Handlers) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

//
// Handlers
//

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and establishes a session. The session token is
// @Description delivered only as an HttpOnly cookie; the body carries the profile.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.UserProfile
// @Header      200  {string}  Set-Cookie  "Session cookie"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	u, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "login failed")
		return
	}

	h.setSessionCookie(c, token)
	ok(c, http.StatusOK, profileOf(u))
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Destroys the current session (if any) and clears the cookie.
// @Description Safe to call without a session; always succeeds.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object}  map[string]bool
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if token, present := middleware.SessionTokenFrom(c); present {
		if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "logout failed")
			return
		}
	}
	h.clearSessionCookie(c)
	ok(c, http.StatusOK, gin.H{"success": true})
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new customer with their address. The email must not
// @Description already own an account.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  map[string]bool
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid registration payload")
		return
	}

	err := h.authSvc.Register(c.Request.Context(), services.RegisterRequest{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		AddressLine: req.AddressLine,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusConflict, ErrCodeEmailTaken, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "registration failed")
		return
	}
	ok(c, http.StatusCreated, gin.H{"success": true})
}

// Me godoc
// @ID          me
// @Summary     Current user
// @Description Returns the profile behind the session cookie.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object}  handlers.UserProfile
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	ident := middleware.IdentityFrom(c)
	if !ident.Authenticated {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	u, err := repo.GetUser(c.Request.Context(), h.db, ident.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "profile lookup failed")
		return
	}
	ok(c, http.StatusOK, profileOf(u))
}
