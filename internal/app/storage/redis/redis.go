// Package redis implements the key-value contract on a Redis server, for
// sessions that outlive a single process.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/lunaredge/storefront/internal/app/storage"
)

// Store namespaces all session keys under a fixed prefix so a shared Redis
// instance can host other applications.
type Store struct {
	client *goredis.Client
	prefix string
}

var _ storage.KV = (*Store)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}
	return &Store{client: client, prefix: "storefront:"}, nil
}

// NewWithClient wraps an existing client, primarily for tests.
func NewWithClient(client *goredis.Client) *Store {
	return &Store{client: client, prefix: "storefront:"}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis store: remove %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
