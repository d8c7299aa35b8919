package storage

import (
	"context"
	"errors"
)

// Persisted state keys. Each entry is an independently serialized JSON
// document.
const (
	KeyUser     = "user"
	KeyOrders   = "orders"
	KeyWishlist = "wishlist"
)

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("storage: key not found")

// KV is the local device store contract: an opaque byte value per key.
// Implementations must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
