package state

import (
	"context"
	"encoding/json"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/lunaredge/storefront/internal/app/domain/cart"
	"github.com/lunaredge/storefront/internal/app/domain/order"
	"github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/storage"
	"github.com/lunaredge/storefront/internal/app/storage/memory"
	"github.com/lunaredge/storefront/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewDefault("test")
	log.SetOutput(io.Discard)
	return log
}

func TestPlaceOrderIsOneTransition(t *testing.T) {
	store := New(memory.New(), quietLogger())
	store.InsertLine(cart.Line{ProductID: "A", UnitPrice: 10, Quantity: 2})

	placed := order.Order{
		ID:        123456,
		CreatedAt: time.Now(),
		Lines:     store.Lines(),
		Address:   profile.Address{Type: "Home", Line1: "1 Main St", City: "Pune", State: "MH", Pincode: "411001"},
		Total:     "20.00",
	}
	store.PlaceOrder(placed)

	if got := store.Lines(); len(got) != 0 {
		t.Fatalf("cart not cleared: %#v", got)
	}
	orders := store.Orders()
	if len(orders) != 1 || orders[0].ID != 123456 {
		t.Fatalf("order not at front of ledger: %#v", orders)
	}
}

func TestOrderSnapshotImmuneToCartMutation(t *testing.T) {
	store := New(memory.New(), quietLogger())
	store.InsertLine(cart.Line{ProductID: "A", UnitPrice: 10, Quantity: 2})

	store.PlaceOrder(order.Order{ID: 1, Lines: store.Lines(), Total: "20.00"})

	// New session activity must not leak into the placed order.
	store.InsertLine(cart.Line{ProductID: "B", UnitPrice: 5, Quantity: 1})
	if _, ok := store.AdjustQuantity("B", 3); !ok {
		t.Fatal("adjust missing line")
	}

	orders := store.Orders()
	if len(orders[0].Lines) != 1 || orders[0].Lines[0].ProductID != "A" || orders[0].Lines[0].Quantity != 2 {
		t.Fatalf("order snapshot mutated: %#v", orders[0].Lines)
	}

	// Mutating a returned copy must not touch the ledger either.
	orders[0].Lines[0].Quantity = 99
	if store.Orders()[0].Lines[0].Quantity != 2 {
		t.Fatal("returned order shares memory with the ledger")
	}
}

func TestAdjustQuantityRemovesAtZero(t *testing.T) {
	store := New(memory.New(), quietLogger())
	store.InsertLine(cart.Line{ProductID: "A", UnitPrice: 1, Quantity: 1})

	line, ok := store.AdjustQuantity("A", -1)
	if !ok || line.Quantity != 0 {
		t.Fatalf("unexpected adjust result: %#v ok=%v", line, ok)
	}
	if got := store.Lines(); len(got) != 0 {
		t.Fatalf("zero-quantity line retained: %#v", got)
	}
}

func TestHydrateRoundTrip(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()

	store := New(kv, quietLogger())
	store.SetUser(profile.User{
		Name:  "Garvesh Jangid",
		Email: "garvesh@example.com",
		Addresses: []profile.Address{
			{Type: "Home", Line1: "12 Lake Rd", City: "Pune", State: "MH", Pincode: "411001"},
		},
	})
	store.InsertLine(cart.Line{ProductID: "A", UnitPrice: 10, Quantity: 2})
	store.PlaceOrder(order.Order{ID: 555001, CreatedAt: time.Now().UTC().Truncate(time.Second), Lines: store.Lines(), Total: "20.00"})
	store.ToggleWishlist("B")
	store.Wait()

	reloaded := New(kv, quietLogger())
	if err := reloaded.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	user, ok := reloaded.User()
	if !ok || user.Name != "Garvesh Jangid" || len(user.Addresses) != 1 {
		t.Fatalf("user not restored: %#v ok=%v", user, ok)
	}
	if !reflect.DeepEqual(reloaded.Orders(), store.Orders()) {
		t.Fatalf("orders not restored: %#v vs %#v", reloaded.Orders(), store.Orders())
	}
	if !reloaded.InWishlist("B") {
		t.Fatal("wishlist not restored")
	}
	// The cart is session-local and never persisted.
	if got := reloaded.Lines(); len(got) != 0 {
		t.Fatalf("cart unexpectedly persisted: %#v", got)
	}
}

func TestHydrateDiscardsCorruptEntries(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	if err := kv.Set(ctx, storage.KeyOrders, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := New(kv, quietLogger())
	if err := store.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate should tolerate corrupt entries: %v", err)
	}
	if got := store.Orders(); len(got) != 0 {
		t.Fatalf("expected empty ledger, got %#v", got)
	}
}

func TestReplaceAddressesBootstrapsAnonymousUser(t *testing.T) {
	kv := memory.New()
	store := New(kv, quietLogger())

	store.ReplaceAddresses([]profile.Address{{Line1: "x"}})
	store.Wait()

	addrs := store.Addresses()
	if len(addrs) != 1 || addrs[0].Line1 != "x" {
		t.Fatalf("expected the address to be kept, got %#v", addrs)
	}

	user, ok := store.User()
	if !ok {
		t.Fatal("expected an anonymous user to own the address book")
	}
	if user.ID == "" {
		t.Fatal("expected the anonymous user to get an id")
	}
	if user.Email != "" || user.Name != "" {
		t.Fatalf("expected an empty anonymous profile, got %#v", user)
	}

	if _, err := kv.Get(context.Background(), storage.KeyUser); err != nil {
		t.Fatalf("expected the anonymous profile to persist: %v", err)
	}
}

func TestClearUserRemovesPersistedEntry(t *testing.T) {
	kv := memory.New()
	store := New(kv, quietLogger())
	store.SetUser(profile.User{Name: "n", Email: "e"})
	store.Wait()

	store.ClearUser()
	store.Wait()

	if _, err := kv.Get(context.Background(), storage.KeyUser); err == nil {
		t.Fatal("persisted user should be removed on logout")
	}
}

func TestFlushWritesEveryEntry(t *testing.T) {
	kv := memory.New()
	store := New(kv, quietLogger())
	store.SetUser(profile.User{Name: "n", Email: "e"})
	store.ToggleWishlist("A")
	store.Wait()

	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	data, err := kv.Get(context.Background(), storage.KeyOrders)
	if err != nil {
		t.Fatalf("orders entry missing after flush: %v", err)
	}
	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		t.Fatalf("orders entry not valid JSON: %v", err)
	}
}
