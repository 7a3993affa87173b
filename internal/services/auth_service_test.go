package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/session"
)

func registerReq() RegisterRequest {
	return RegisterRequest{
		Username:    "ada",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "Ada@Example.com",
		Phone:       "+44 20 7946 0958",
		Password:    "correct horse battery staple",
		AddressLine: "12 Analytical Way",
		City:        "london",
		PostalCode:  "EC1A 1BB",
		Country:     "united kingdom",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	db := newServiceDB(t)
	sessions := session.NewMemoryStore(0)
	svc := NewAuthService(db, sessions)
	ctx := context.Background()

	if err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Stored password is a bcrypt hash, never the plaintext.
	var u domain.User
	if err := db.First(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("correct horse battery staple")) != nil {
		t.Fatalf("stored password is not a valid bcrypt hash of the input")
	}

	// Login with mixed-case email succeeds and mints a session.
	got, token, err := svc.Login(ctx, "ADA@example.COM", "correct horse battery staple")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID || token == "" {
		t.Fatalf("unexpected login result: id=%d token=%q", got.ID, token)
	}
	if id, ok, _ := sessions.Lookup(ctx, token); !ok || id != u.ID {
		t.Fatalf("session not resolvable: ok=%v id=%d", ok, id)
	}
}

func TestLogin_WrongPasswordAndUnknownEmailCollapse(t *testing.T) {
	db := newServiceDB(t)
	svc := NewAuthService(db, session.NewMemoryStore(0))
	ctx := context.Background()

	if err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, errWrong := svc.Login(ctx, "ada@example.com", "not the password")
	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "whatever")

	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("expected both failures to be ErrInvalidCredentials, got %v and %v", errWrong, errUnknown)
	}
}

func TestLogin_GuestAccountCannotLogIn(t *testing.T) {
	db := newServiceDB(t)
	svc := NewAuthService(db, session.NewMemoryStore(0))
	ctx := context.Background()

	// Guest-checkout accounts carry no password hash.
	guest := domain.User{Username: "g@example.com", Email: "g@example.com", Role: domain.RoleCustomer}
	if err := db.Create(&guest).Error; err != nil {
		t.Fatalf("seed guest: %v", err)
	}

	if _, _, err := svc.Login(ctx, "g@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for guest account, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	db := newServiceDB(t)
	sessions := session.NewMemoryStore(0)
	svc := NewAuthService(db, sessions)
	ctx := context.Background()

	if err := svc.Logout(ctx, "no-such-token"); err != nil {
		t.Fatalf("logout of unknown token must be a no-op, got %v", err)
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("logout of empty token must be a no-op, got %v", err)
	}

	token, err := sessions.Create(ctx, 1)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := sessions.Lookup(ctx, token); ok {
		t.Fatalf("session should be gone after logout")
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("second logout must be a no-op, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newServiceDB(t)
	svc := NewAuthService(db, session.NewMemoryStore(0))
	ctx := context.Background()

	if err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	again := registerReq()
	again.Username = "someone-else"
	if err := svc.Register(ctx, again); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The failed attempt must not leave its address behind.
	var addresses int64
	db.Model(&domain.Address{}).Count(&addresses)
	if addresses != 1 {
		t.Fatalf("expected 1 address after duplicate register, got %d", addresses)
	}
}

func TestRegisterThenCheckout_SameAccount(t *testing.T) {
	db := newServiceDB(t)
	seedProcessing(t, db)
	p := seedProduct(t, db, "Keyboard", 149)

	auth := NewAuthService(db, session.NewMemoryStore(0))
	ctx := context.Background()
	if err := auth.Register(ctx, registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	var registered domain.User
	if err := db.First(&registered).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	conf, err := NewCheckoutService(db).Checkout(ctx, validRequest(p.ID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if conf.UserID != registered.ID {
		t.Fatalf("checkout should reuse the registered account, got %d want %d", conf.UserID, registered.ID)
	}

	// Reuse keeps the registered profile and its password.
	var after domain.User
	if err := db.First(&after, registered.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Password == "" || after.Username != "ada" {
		t.Fatalf("stored profile must win on reuse, got %+v", after)
	}
}
