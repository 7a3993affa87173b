// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements session-based identity resolution. SessionResolver
// reads the session cookie, resolves the token through the injected session
// store, loads the account row, and stashes a single Identity value in the
// request context. Resolution happens exactly once per request; every
// downstream consumer (handlers, rate limiter, idempotency) reads the same
// Identity via IdentityFrom.
//
// Failure semantics are deliberately soft: a missing cookie, an unknown or
// expired token, and a token whose user row has since been deleted all
// resolve to the anonymous identity rather than an error. Only RequireUser
// turns anonymity into a 401.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-store-backend/internal/domain"
	"github.com/tbourn/go-store-backend/internal/repo"
	"github.com/tbourn/go-store-backend/internal/session"
)

// ctxKeyIdentity is the Gin context key under which the resolved Identity is
// stored. Unexported; use IdentityFrom.
const ctxKeyIdentity = "identity"

// ctxKeySessionToken holds the raw session token for the request, when one
// was presented, so logout can destroy it without re-reading the cookie.
const ctxKeySessionToken = "session.token"

// SessionResolver resolves the session cookie named cookieName into an
// Identity and stores it in the Gin context.
//
// A dangling token (present in the store but pointing at a deleted user) is
// treated as no session. Store lookup failures are logged by the access
// logger via c.Error and degrade to anonymous so that a session backend
// outage never takes down read-only traffic.
func SessionResolver(db *gorm.DB, store session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := domain.Anonymous

		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			c.Set(ctxKeySessionToken, token)

			userID, ok, lerr := store.Lookup(c.Request.Context(), token)
			if lerr != nil {
				_ = c.Error(lerr)
			} else if ok {
				u, uerr := repo.GetUser(c.Request.Context(), db, userID)
				switch {
				case uerr == nil:
					ident = domain.AuthenticatedAs(u)
				case errors.Is(uerr, repo.ErrNotFound):
					// Dangling session; fall through as anonymous.
				default:
					_ = c.Error(uerr)
				}
			}
		}

		c.Set(ctxKeyIdentity, ident)
		c.Next()
	}
}

// IdentityFrom returns the Identity resolved for this request. When called
// outside a SessionResolver chain it returns the anonymous identity, so
// callers never need a presence check.
func IdentityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(ctxKeyIdentity); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Anonymous
}

// SessionTokenFrom returns the raw session token presented with the request,
// if any. The token may be dangling; presence does not imply a valid session.
func SessionTokenFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeySessionToken)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// RequireUser aborts anonymous requests with 401 and a standard error body.
// Routes behind it can assume IdentityFrom(c).Authenticated is true.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "authentication required",
			})
			return
		}
		c.Next()
	}
}
