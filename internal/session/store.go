// Package session provides the server-side session store: the external
// key-value service that maps opaque tokens to user ids. Token lifecycle
// (create, lookup, destroy) is its entire contract; the token carries no
// semantic payload, and no identity claim beyond it is ever trusted from
// the client.
//
// Two implementations exist: a Redis-backed store for deployments and an
// in-memory store for tests and redis-less development. Both are injected
// explicitly; there is no ambient global session state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the session service contract consumed by the authenticator
// (create/destroy) and the identity-resolving middleware (lookup).
type Store interface {
	// Create mints a new opaque token bound to userID. Multiple live
	// sessions per user are permitted; creating one never invalidates
	// another.
	Create(ctx context.Context, userID uint) (string, error)

	// Lookup resolves token to the owning user id. The second return is
	// false for missing, expired, or destroyed tokens, never an error.
	Lookup(ctx context.Context, token string) (uint, bool, error)

	// Destroy removes token. Idempotent: destroying an unknown or already
	// destroyed token is a no-op.
	Destroy(ctx context.Context, token string) error
}

// memEntry is one in-memory session with its absolute expiry.
type memEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStore is a process-local Store for tests and development. Expired
// entries are dropped lazily on lookup. Safe for concurrent use.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memEntry

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewMemoryStore builds a MemoryStore whose sessions live for ttl.
// A ttl <= 0 means sessions never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]memEntry),
		now: time.Now,
	}
}

// Create mints a UUID token for userID.
func (s *MemoryStore) Create(_ context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memEntry{userID: userID}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.m[token] = e
	return token, nil
}

// Lookup resolves token, dropping it when expired.
func (s *MemoryStore) Lookup(_ context.Context, token string) (uint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[token]
	if !ok {
		return 0, false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.m, token)
		return 0, false, nil
	}
	return e.userID, true, nil
}

// Destroy removes token if present.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
