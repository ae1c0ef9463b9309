package token

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func keyRevoked(jti string) string     { return "token:revoked:" + jti }
func keyVerifyToken(tok string) string { return "email:verify:token:" + tok }

// RedisRevocationStore backs refresh-token revocation with Redis.
// CompareAndRevoke maps onto SET NX EX, which makes the first-revoker-wins
// check a single round trip.
type RedisRevocationStore struct {
	rdb *redis.Client
}

func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb}
}

func (s *RedisRevocationStore) CompareAndRevoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, keyRevoked(jti), "1", ttl).Result()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyRevoked(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RedisVerificationStore keeps verification token → user id mappings with a TTL.
type RedisVerificationStore struct {
	rdb *redis.Client
}

func NewRedisVerificationStore(rdb *redis.Client) *RedisVerificationStore {
	return &RedisVerificationStore{rdb: rdb}
}

func (s *RedisVerificationStore) Save(ctx context.Context, tok, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, keyVerifyToken(tok), userID, ttl).Err()
}

func (s *RedisVerificationStore) Lookup(ctx context.Context, tok string) (string, error) {
	uid, err := s.rdb.Get(ctx, keyVerifyToken(tok)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

var (
	_ RevocationStore   = (*RedisRevocationStore)(nil)
	_ VerificationStore = (*RedisVerificationStore)(nil)
)
