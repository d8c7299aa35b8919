// Package orders manages the historical record of placed orders.
package orders

import (
	"github.com/lunaredge/storefront/internal/app/domain/order"
	"github.com/lunaredge/storefront/internal/app/metrics"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Service reads and cancels entries in the order ledger. Orders enter the
// ledger only through the checkout flow.
type Service struct {
	state state.OrderState
	log   *logger.Logger
}

// New constructs an order ledger service.
func New(st state.OrderState, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{state: st, log: log}
}

// List returns all orders, most recent first.
func (s *Service) List() []order.Order {
	return s.state.Orders()
}

// Get resolves an order by id.
func (s *Service) Get(id int) (order.Order, bool) {
	for _, o := range s.state.Orders() {
		if o.ID == id {
			return o, true
		}
	}
	return order.Order{}, false
}

// Cancel deletes the order with the given id from the ledger. Cancelling an
// unknown id is a no-op. Cancellation does not restock inventory or refund:
// it is a pure deletion from history.
func (s *Service) Cancel(id int) {
	if !s.state.RemoveOrder(id) {
		s.log.WithField("order_id", id).Debug("cancel of unknown order ignored")
		return
	}
	metrics.OrderCancelled()
	s.log.WithField("order_id", id).Info("order cancelled")
}
