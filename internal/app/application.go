// Package app ties the storefront session services together.
package app

import (
	"context"

	catalogdomain "github.com/lunaredge/storefront/internal/app/domain/catalog"
	"github.com/lunaredge/storefront/internal/app/services/addresses"
	"github.com/lunaredge/storefront/internal/app/services/auth"
	cartsvc "github.com/lunaredge/storefront/internal/app/services/cart"
	catalogsvc "github.com/lunaredge/storefront/internal/app/services/catalog"
	"github.com/lunaredge/storefront/internal/app/services/checkout"
	ordersvc "github.com/lunaredge/storefront/internal/app/services/orders"
	profilesvc "github.com/lunaredge/storefront/internal/app/services/profile"
	wishlistsvc "github.com/lunaredge/storefront/internal/app/services/wishlist"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/internal/app/storage"
	"github.com/lunaredge/storefront/internal/app/storage/memory"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Application holds the wired session services. One Application is one
// active user session.
type Application struct {
	log   *logger.Logger
	State *state.Store

	Catalog   *catalogsvc.Service
	Cart      *cartsvc.Service
	Wishlist  *wishlistsvc.Service
	Addresses *addresses.Service
	Orders    *ordersvc.Service
	Checkout  *checkout.Service
	Profile   *profilesvc.Service
}

// New builds a fully initialised application. A nil kv defaults to the
// in-memory store; a nil auth client leaves login against a remote service
// unavailable but every local flow functional.
func New(kv storage.KV, products []catalogdomain.Product, authClient *auth.Client, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if kv == nil {
		kv = memory.New()
	}

	st := state.New(kv, log.WithField("component", "state"))
	catalog := catalogsvc.New(products, log.WithField("component", "catalog"))
	cart := cartsvc.New(st, catalog, log.WithField("component", "cart"))

	return &Application{
		log:       log,
		State:     st,
		Catalog:   catalog,
		Cart:      cart,
		Wishlist:  wishlistsvc.New(st, catalog, log.WithField("component", "wishlist")),
		Addresses: addresses.New(st, log.WithField("component", "addresses")),
		Orders:    ordersvc.New(st, log.WithField("component", "orders")),
		Checkout:  checkout.New(cart, st, log.WithField("component", "checkout")),
		Profile:   profilesvc.New(st, authClient, log.WithField("component", "profile")),
	}
}

// Hydrate loads previously persisted session state.
func (a *Application) Hydrate(ctx context.Context) error {
	return a.State.Hydrate(ctx)
}
