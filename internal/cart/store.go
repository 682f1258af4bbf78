package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	redisclient "github.com/smartcart/smartcart-backend/pkg/redis"
)

// LocalStore is the durable per-session slot holding the serialized cart.
// Load returns nil data when nothing is stored.
type LocalStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Clear(ctx context.Context, key string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionKey string) string
}

// RedisStore keeps carts under sc:cart:<session_key>.
type RedisStore struct {
	kv  kvStore
	ttl time.Duration
}

func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{kv: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.kv.Get(ctx, s.kv.CartKey(key))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(val), nil
}

func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	return s.kv.Set(ctx, s.kv.CartKey(key), data, s.ttl)
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.kv.Del(ctx, s.kv.CartKey(key))
}

// MemoryStore is a process-local LocalStore.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
