package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	redisclient "github.com/smartcart/smartcart-backend/pkg/redis"
)

// Store holds serialized working copies keyed by owner id. Load returns nil
// data when the owner has no working copy yet.
type Store interface {
	Load(ctx context.Context, ownerID string) ([]byte, error)
	Save(ctx context.Context, ownerID string, data []byte) error
	Clear(ctx context.Context, ownerID string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	InventoryKey(ownerID string) string
}

// RedisStore keeps working copies under sc:inventory:<owner_id> without expiry.
type RedisStore struct {
	kv kvStore
}

func NewRedisStore(client *redisclient.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{kv: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, ownerID string) ([]byte, error) {
	val, err := s.kv.Get(ctx, s.kv.InventoryKey(ownerID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(val), nil
}

func (s *RedisStore) Save(ctx context.Context, ownerID string, data []byte) error {
	return s.kv.Set(ctx, s.kv.InventoryKey(ownerID), data, 0)
}

func (s *RedisStore) Clear(ctx context.Context, ownerID string) error {
	return s.kv.Del(ctx, s.kv.InventoryKey(ownerID))
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore returns a process-local Store.
func NewMemoryStore() Store {
	return &memoryStore{data: map[string][]byte{}}
}

func (s *memoryStore) Load(_ context.Context, ownerID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[ownerID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Save(_ context.Context, ownerID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ownerID] = append([]byte(nil), data...)
	return nil
}

func (s *memoryStore) Clear(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, ownerID)
	return nil
}
