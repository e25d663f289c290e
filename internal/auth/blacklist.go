package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Blacklist хранит отозванные (logout) идентификаторы токенов до их истечения
type Blacklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryBlacklist - для одного инстанса и тестов
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for id, exp := range b.revoked {
		if now.After(exp) {
			delete(b.revoked, id)
		}
	}
	b.revoked[tokenID] = expiresAt
	return nil
}

func (b *MemoryBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(b.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// RedisBlacklist - общий для нескольких инстансов API
type RedisBlacklist struct {
	client *redis.Client
	prefix string
}

func NewRedisBlacklist(redisURL string) (*RedisBlacklist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}

	return &RedisBlacklist{client: client, prefix: "estate:revoked:"}, nil
}

func (b *RedisBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.prefix+tokenID, 1, ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.client.Exists(ctx, b.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *RedisBlacklist) Close() error {
	return b.client.Close()
}
