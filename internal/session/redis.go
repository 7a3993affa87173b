// Redis-backed session store.
//
// Sessions live under "session:<token>" with the user id as the value and a
// TTL applied at creation. Redis owns expiry; a vanished key simply resolves
// to "no session", which the middleware maps to the anonymous identity.

package session

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys so the database can be shared with
// other storefront caches.
const keyPrefix = "session:"

// RedisStore implements Store on top of a go-redis client.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client with the given session TTL. A ttl <= 0 stores
// sessions without expiry (not recommended outside development).
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Create mints a UUID token and stores the user id under it.
func (s *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	var expiry time.Duration
	if s.ttl > 0 {
		expiry = s.ttl
	}
	if err := s.client.Set(ctx, keyPrefix+token, strconv.FormatUint(uint64(userID), 10), expiry).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup resolves token to its user id. A missing key is not an error; a
// corrupt value is treated as no session rather than failing the request.
func (s *RedisStore) Lookup(ctx context.Context, token string) (uint, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uint(id), true, nil
}

// Destroy deletes the session key. Deleting a missing key is a no-op.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
