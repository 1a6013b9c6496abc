package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore holds tokens that were invalidated before their natural
// expiry. Entries carry a TTL so the set self-prunes instead of growing for
// the lifetime of the process.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocationStore is a process-local store. Known limitation: tokens
// revoked before a restart become valid again; deployments that need to
// survive restarts (or run more than one instance) use the Redis store.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time // token -> entry expiry
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.revoked[token] = s.now().Add(ttl)
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.revoked[token]
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.revoked, token)
		return false, nil
	}
	return true, nil
}

// prune drops expired entries. Caller must hold the lock.
func (s *MemoryRevocationStore) prune() {
	now := s.now()
	for token, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, token)
		}
	}
}

// RedisRevocationStore keys revoked tokens by digest so the raw credential
// never lands in Redis.
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func revocationKey(token string) string {
	digest := sha256.Sum256([]byte(token))
	return "revoked_token:" + hex.EncodeToString(digest[:])
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, revocationKey(token), "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
