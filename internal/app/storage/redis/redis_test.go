package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/lunaredge/storefront/internal/app/storage"
)

// TestRedisStoreIntegration exercises a real Redis instance. Set
// TEST_REDIS_ADDR (e.g. localhost:6379) to run it.
func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := New(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	key := "it-" + uuid.NewString()
	defer store.Remove(ctx, key)

	if _, err := store.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a fresh key, got %v", err)
	}

	want := []byte(`{"hello":"world"}`)
	if err := store.Set(ctx, key, want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}
