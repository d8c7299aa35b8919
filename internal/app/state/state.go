// Package state holds the authoritative in-memory session state: cart lines,
// placed orders, the active user profile and the wishlist. All collections
// live behind a single lock so multi-collection transitions (placing an
// order while clearing the cart) are observable either fully-before or
// fully-after by any reader.
//
// Mutations are synchronous in memory and followed by an asynchronous
// best-effort write to the device key-value store. A failed write is logged
// and counted, never surfaced, and never rolls back the in-memory change.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lunaredge/storefront/internal/app/domain/cart"
	"github.com/lunaredge/storefront/internal/app/domain/order"
	"github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/metrics"
	"github.com/lunaredge/storefront/internal/app/storage"
	"github.com/lunaredge/storefront/pkg/logger"
)

// CartState exposes the cart's primitive transitions. Quantity and
// uniqueness invariants are enforced by the cart service on top of these.
type CartState interface {
	Lines() []cart.Line
	InsertLine(line cart.Line)
	MergeQuantity(productID string, qty int) bool
	RemoveLine(productID string) bool
	AdjustQuantity(productID string, delta int) (cart.Line, bool)
	ClearCart()
}

// OrderState exposes the order ledger's transitions.
type OrderState interface {
	Orders() []order.Order
	// PlaceOrder prepends the order and clears the cart as one transition.
	PlaceOrder(o order.Order)
	RemoveOrder(id int) bool
}

// ProfileState exposes the active user and the owned address list.
type ProfileState interface {
	User() (profile.User, bool)
	SetUser(u profile.User)
	ClearUser()
	Addresses() []profile.Address
	ReplaceAddresses(addrs []profile.Address)
}

// WishlistState exposes the wishlist membership set.
type WishlistState interface {
	Wishlist() []string
	ToggleWishlist(productID string) bool
	InWishlist(productID string) bool
}

const persistTimeout = 5 * time.Second

// Store is the single-session state container.
type Store struct {
	mu       sync.RWMutex
	lines    []cart.Line
	orders   []order.Order
	user     *profile.User
	wishlist []string

	kv  storage.KV
	log *logger.Logger
	wg  sync.WaitGroup
}

var _ CartState = (*Store)(nil)
var _ OrderState = (*Store)(nil)
var _ ProfileState = (*Store)(nil)
var _ WishlistState = (*Store)(nil)

// New creates a store persisting to the given key-value store.
func New(kv storage.KV, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("state")
	}
	return &Store{kv: kv, log: log}
}

// Hydrate loads persisted state. A missing key means a fresh session for
// that entry; a corrupt entry is logged and discarded rather than aborting
// startup.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, err := s.kv.Get(ctx, storage.KeyUser); err == nil {
		var u profile.User
		if jsonErr := json.Unmarshal(data, &u); jsonErr != nil {
			s.log.WithError(jsonErr).Warn("discarding corrupt persisted user")
		} else {
			s.user = &u
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load %s: %w", storage.KeyUser, err)
	}

	if data, err := s.kv.Get(ctx, storage.KeyOrders); err == nil {
		var orders []order.Order
		if jsonErr := json.Unmarshal(data, &orders); jsonErr != nil {
			s.log.WithError(jsonErr).Warn("discarding corrupt persisted orders")
		} else {
			s.orders = orders
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load %s: %w", storage.KeyOrders, err)
	}

	if data, err := s.kv.Get(ctx, storage.KeyWishlist); err == nil {
		var wishlist []string
		if jsonErr := json.Unmarshal(data, &wishlist); jsonErr != nil {
			s.log.WithError(jsonErr).Warn("discarding corrupt persisted wishlist")
		} else {
			s.wishlist = wishlist
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load %s: %w", storage.KeyWishlist, err)
	}

	return nil
}

// Flush synchronously re-persists every entry. Used by the checkpoint
// service as a safety net behind the per-mutation writes.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	userPayload, userPresent := s.encodeUserLocked()
	ordersPayload := mustMarshal(order.CloneOrders(s.orders))
	wishlistPayload := mustMarshal(cloneStrings(s.wishlist))
	s.mu.RUnlock()

	var errs []error
	if userPresent {
		if err := s.kv.Set(ctx, storage.KeyUser, userPayload); err != nil {
			errs = append(errs, err)
		}
	} else {
		if err := s.kv.Remove(ctx, storage.KeyUser); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.kv.Set(ctx, storage.KeyOrders, ordersPayload); err != nil {
		errs = append(errs, err)
	}
	if err := s.kv.Set(ctx, storage.KeyWishlist, wishlistPayload); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Wait blocks until all in-flight background persistence writes finish.
// Tests and shutdown paths use it to observe a quiesced store.
func (s *Store) Wait() {
	s.wg.Wait()
}

// --- CartState ---------------------------------------------------------------

func (s *Store) Lines() []cart.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cart.CloneLines(s.lines)
}

func (s *Store) InsertLine(line cart.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *Store) MergeQuantity(productID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += qty
			return true
		}
	}
	return false
}

func (s *Store) RemoveLine(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	return false
}

// AdjustQuantity applies a delta to the matching line. A line whose quantity
// drops to zero or below is removed, never retained. The returned line
// reflects the post-adjustment value (zero-quantity when removed).
func (s *Store) AdjustQuantity(productID string, delta int) (cart.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID != productID {
			continue
		}
		s.lines[i].Quantity += delta
		line := s.lines[i]
		if line.Quantity <= 0 {
			line.Quantity = 0
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		return line, true
	}
	return cart.Line{}, false
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// --- OrderState --------------------------------------------------------------

func (s *Store) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return order.CloneOrders(s.orders)
}

func (s *Store) PlaceOrder(o order.Order) {
	s.mu.Lock()
	s.orders = append([]order.Order{o.Clone()}, s.orders...)
	s.lines = nil
	payload := mustMarshal(order.CloneOrders(s.orders))
	s.mu.Unlock()

	s.persist(storage.KeyOrders, payload)
}

func (s *Store) RemoveOrder(id int) bool {
	s.mu.Lock()
	removed := false
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			removed = true
			break
		}
	}
	var payload []byte
	if removed {
		payload = mustMarshal(order.CloneOrders(s.orders))
	}
	s.mu.Unlock()

	if removed {
		s.persist(storage.KeyOrders, payload)
	}
	return removed
}

// --- ProfileState ------------------------------------------------------------

func (s *Store) User() (profile.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return profile.User{}, false
	}
	return s.user.Clone(), true
}

func (s *Store) SetUser(u profile.User) {
	s.mu.Lock()
	cloned := u.Clone()
	s.user = &cloned
	payload, _ := s.encodeUserLocked()
	s.mu.Unlock()

	s.persist(storage.KeyUser, payload)
}

func (s *Store) ClearUser() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.kv.Remove(ctx, storage.KeyUser); err != nil {
			metrics.PersistenceFailure(storage.KeyUser)
			s.log.WithError(err).WithField("key", storage.KeyUser).Warn("failed to remove persisted entry")
		}
	}()
}

func (s *Store) Addresses() []profile.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	return profile.CloneAddresses(s.user.Addresses)
}

// ReplaceAddresses swaps the whole address list. When no user is active an
// anonymous local profile is bootstrapped to own it, so the address book
// works before any login.
func (s *Store) ReplaceAddresses(addrs []profile.Address) {
	s.mu.Lock()
	if s.user == nil {
		s.user = &profile.User{ID: uuid.NewString()}
	}
	s.user.Addresses = profile.CloneAddresses(addrs)
	payload, _ := s.encodeUserLocked()
	s.mu.Unlock()

	s.persist(storage.KeyUser, payload)
}

// --- WishlistState -----------------------------------------------------------

func (s *Store) Wishlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStrings(s.wishlist)
}

func (s *Store) ToggleWishlist(productID string) bool {
	s.mu.Lock()
	added := true
	for i, id := range s.wishlist {
		if id == productID {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			added = false
			break
		}
	}
	if added {
		s.wishlist = append(s.wishlist, productID)
	}
	payload := mustMarshal(cloneStrings(s.wishlist))
	s.mu.Unlock()

	s.persist(storage.KeyWishlist, payload)
	return added
}

func (s *Store) InWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// --- persistence -------------------------------------------------------------

func (s *Store) persist(key string, payload []byte) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.kv.Set(ctx, key, payload); err != nil {
			metrics.PersistenceFailure(key)
			s.log.WithError(err).WithField("key", key).Warn("best-effort persistence write failed")
		}
	}()
}

func (s *Store) encodeUserLocked() ([]byte, bool) {
	if s.user == nil {
		return nil, false
	}
	return mustMarshal(s.user.Clone()), true
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Domain types marshal without error; this indicates a programming bug.
		panic(fmt.Sprintf("state: marshal %T: %v", v, err))
	}
	return data
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
