package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the session layer seen from the cart's point of view: a key-value
// store of carts by session id. Loading a session that has no cart yet
// returns an empty cart, not an error.
type Store interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// RedisStore keeps each cart as a JSON value with a TTL, so abandoned
// sessions age out on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewCart(), nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("failed to decode cart for session %s: %w", sessionID, err)
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart for session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart for session %s: %w", sessionID, err)
	}
	return nil
}

// MemoryStore is an in-process Store for local runs without redis and for
// tests. Carts are copied on the way in and out so callers never share map
// state.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[sessionID]
	if !ok {
		return NewCart(), nil
	}
	return copyCart(stored), nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = copyCart(c)
	return nil
}

func copyCart(c Cart) Cart {
	out := NewCart()
	for bookID, entry := range c.Entries {
		out.Entries[bookID] = entry
	}
	return out
}
