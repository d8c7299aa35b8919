// Package cart maintains the working set of line items for the session.
//
// The store is a pure container: stock and minimum-order-quantity checks at
// add-time belong to the caller, so browsing flows can decide how to surface
// them. Checkout preconditions are enforced by ValidateForCheckout.
package cart

import (
	"github.com/lunaredge/storefront/internal/app/domain/cart"
	"github.com/lunaredge/storefront/internal/app/domain/catalog"
	"github.com/lunaredge/storefront/internal/app/metrics"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/pkg/logger"
)

// ProductResolver looks up catalog records, used to resolve minimum order
// quantities at validation time.
type ProductResolver interface {
	Product(id string) (catalog.Product, bool)
}

// Service manages the session cart.
type Service struct {
	state   state.CartState
	catalog ProductResolver
	log     *logger.Logger
}

// New constructs a cart service.
func New(st state.CartState, resolver ProductResolver, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("cart")
	}
	return &Service{state: st, catalog: resolver, log: log}
}

// Add puts a product into the cart. An existing line for the product has its
// quantity incremented and keeps its already-snapshotted unit price; a new
// line snapshots the discounted catalog price at this moment. A
// non-positive requested quantity falls back to the product's minimum order
// quantity.
func (s *Service) Add(product catalog.Product, quantity int) cart.Line {
	if quantity <= 0 {
		quantity = product.MinimumQuantity()
	}

	metrics.CartOperation("add")

	if s.state.MergeQuantity(product.ID, quantity) {
		line, _ := s.find(product.ID)
		s.log.WithField("product_id", product.ID).
			WithField("quantity", line.Quantity).
			Info("cart line quantity merged")
		return line
	}

	line := cart.Line{
		ProductID: product.ID,
		Title:     product.Title,
		Thumbnail: product.Thumbnail,
		UnitPrice: product.DiscountedPrice(),
		Quantity:  quantity,
	}
	s.state.InsertLine(line)
	s.log.WithField("product_id", product.ID).
		WithField("unit_price", line.UnitPrice).
		WithField("quantity", quantity).
		Info("cart line added")
	return line
}

// Remove deletes the line for the product. Removing an absent product is a
// no-op, not an error.
func (s *Service) Remove(productID string) {
	metrics.CartOperation("remove")
	if s.state.RemoveLine(productID) {
		s.log.WithField("product_id", productID).Info("cart line removed")
	}
}

// Increment raises the line's quantity by one; no-op when absent.
func (s *Service) Increment(productID string) {
	metrics.CartOperation("increment")
	s.state.AdjustQuantity(productID, 1)
}

// Decrement lowers the line's quantity by one. A line reaching zero is
// removed entirely; no-op when absent.
func (s *Service) Decrement(productID string) {
	metrics.CartOperation("decrement")
	if line, ok := s.state.AdjustQuantity(productID, -1); ok && line.Quantity == 0 {
		s.log.WithField("product_id", productID).Info("cart line removed on decrement to zero")
	}
}

// Lines returns a copy of the current cart lines.
func (s *Service) Lines() []cart.Line {
	return s.state.Lines()
}

// TotalPrice sums unit price times quantity over all lines, rounded to two
// decimal places.
func (s *Service) TotalPrice() float64 {
	var total float64
	for _, line := range s.state.Lines() {
		total += line.Subtotal()
	}
	return catalog.Round2(total)
}

// TotalItems sums all line quantities.
func (s *Service) TotalItems() int {
	var count int
	for _, line := range s.state.Lines() {
		count += line.Quantity
	}
	return count
}

// ValidateForCheckout checks the checkout preconditions without mutating
// state: the cart must be non-empty and every line must meet its product's
// minimum order quantity. Products no longer resolvable in the catalog are
// treated as having a minimum of one.
func (s *Service) ValidateForCheckout() error {
	lines := s.state.Lines()
	if len(lines) == 0 {
		return ErrEmptyCart
	}

	var violations []Violation
	for _, line := range lines {
		minimum := 1
		if product, ok := s.catalog.Product(line.ProductID); ok {
			minimum = product.MinimumQuantity()
		}
		if line.Quantity < minimum {
			violations = append(violations, Violation{
				ProductID:       line.ProductID,
				Title:           line.Title,
				Quantity:        line.Quantity,
				MinimumRequired: minimum,
			})
		}
	}
	if len(violations) > 0 {
		return &BelowMinimumOrderError{Violations: violations}
	}
	return nil
}

func (s *Service) find(productID string) (cart.Line, bool) {
	for _, line := range s.state.Lines() {
		if line.ProductID == productID {
			return line, true
		}
	}
	return cart.Line{}, false
}
