// Package checkout orchestrates the transition from a valid cart plus a
// chosen address into a placed order.
package checkout

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/lunaredge/storefront/internal/app/domain/order"
	"github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/metrics"
	"github.com/lunaredge/storefront/internal/app/state"
	cartsvc "github.com/lunaredge/storefront/internal/app/services/cart"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Service confirms orders.
type Service struct {
	cart  *cartsvc.Service
	state state.OrderState
	log   *logger.Logger

	newID func() int
	now   func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithIDGenerator overrides order id generation, primarily for tests.
func WithIDGenerator(fn func() int) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock overrides the placement timestamp source, primarily for tests.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// New constructs a checkout service.
func New(cart *cartsvc.Service, st state.OrderState, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("checkout")
	}
	s := &Service{
		cart:  cart,
		state: st,
		log:   log,
		// User-facing short order numbers; the collision window across a
		// local single-user ledger is accepted.
		newID: func() int { return 100000 + rand.IntN(900000) },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfirmOrder validates the cart, snapshots its lines and the chosen
// address into a new order, prepends the order to the ledger and clears the
// cart in a single state transition. Validation failures propagate
// unchanged and leave all state untouched.
func (s *Service) ConfirmOrder(address profile.Address) (order.Order, error) {
	if err := s.cart.ValidateForCheckout(); err != nil {
		s.log.WithError(err).Warn("checkout rejected")
		return order.Order{}, err
	}

	total := s.cart.TotalPrice()
	placed := order.Order{
		ID:        s.newID(),
		CreatedAt: s.now(),
		Lines:     s.cart.Lines(),
		Address:   address,
		Total:     strconv.FormatFloat(total, 'f', 2, 64),
	}

	s.state.PlaceOrder(placed)
	metrics.OrderPlaced()
	s.log.WithField("order_id", placed.ID).
		WithField("total", placed.Total).
		WithField("lines", len(placed.Lines)).
		Info("order placed")
	return placed, nil
}
