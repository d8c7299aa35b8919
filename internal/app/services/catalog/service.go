// Package catalog serves the static, read-only product catalog loaded once
// at startup.
package catalog

import (
	"sort"
	"strings"

	domain "github.com/lunaredge/storefront/internal/app/domain/catalog"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Sort options accepted by Filter.
const (
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
	SortRating    = "rating"
)

// Filter narrows and orders a catalog listing.
type Filter struct {
	Category    string
	Search      string
	InStockOnly bool
	Sort        string
}

// Service answers catalog queries for the lifetime of the session.
type Service struct {
	products []domain.Product
	byID     map[string]domain.Product
	log      *logger.Logger
}

// New builds a service over a fixed product set.
func New(products []domain.Product, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	log.WithField("products", len(products)).Info("catalog loaded")
	return &Service{products: products, byID: byID, log: log}
}

// Product resolves a product by id.
func (s *Service) Product(id string) (domain.Product, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// List returns products matching the filter, in catalog order unless a sort
// option is given.
func (s *Service) List(f Filter) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var out []domain.Product
	for _, p := range s.products {
		if f.Category != "" && f.Category != "All" && p.Category != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if f.InStockOnly && p.Stock <= 0 {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	return out
}

// Categories returns the distinct category names in catalog order.
func (s *Service) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
