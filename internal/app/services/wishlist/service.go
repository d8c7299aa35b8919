// Package wishlist tracks products the user has saved for later.
package wishlist

import (
	"github.com/lunaredge/storefront/internal/app/domain/catalog"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/pkg/logger"
)

// ProductResolver looks up catalog records for listing.
type ProductResolver interface {
	Product(id string) (catalog.Product, bool)
}

// Service manages wishlist membership.
type Service struct {
	state   state.WishlistState
	catalog ProductResolver
	log     *logger.Logger
}

// New constructs a wishlist service.
func New(st state.WishlistState, resolver ProductResolver, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("wishlist")
	}
	return &Service{state: st, catalog: resolver, log: log}
}

// Toggle adds the product when absent and removes it when present,
// returning true when the product ended up in the wishlist.
func (s *Service) Toggle(productID string) bool {
	added := s.state.ToggleWishlist(productID)
	if added {
		s.log.WithField("product_id", productID).Info("product added to wishlist")
	} else {
		s.log.WithField("product_id", productID).Info("product removed from wishlist")
	}
	return added
}

// Contains reports whether the product is wishlisted.
func (s *Service) Contains(productID string) bool {
	return s.state.InWishlist(productID)
}

// List resolves the wishlisted products against the catalog. Entries whose
// product is no longer in the catalog are skipped.
func (s *Service) List() []catalog.Product {
	var out []catalog.Product
	for _, id := range s.state.Wishlist() {
		if p, ok := s.catalog.Product(id); ok {
			out = append(out, p)
		}
	}
	return out
}
