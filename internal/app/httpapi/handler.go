// Package httpapi exposes the storefront session over REST.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/lunaredge/storefront/internal/app"
	"github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/metrics"
	cartsvc "github.com/lunaredge/storefront/internal/app/services/cart"
	catalogsvc "github.com/lunaredge/storefront/internal/app/services/catalog"
	"github.com/lunaredge/storefront/internal/middleware"
	"github.com/lunaredge/storefront/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// Options configures the handler.
type Options struct {
	// RequestsPerSecond caps per-client request rates; zero disables
	// limiting.
	RequestsPerSecond int
	Burst             int
}

// NewHandler returns a router exposing the storefront REST API.
func NewHandler(application *app.Application, log *logger.Logger, opts Options) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application}

	r := mux.NewRouter()
	r.Use(middleware.Tracing(log))
	r.Use(middleware.Metrics())
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = opts.RequestsPerSecond
		}
		r.Use(middleware.NewRateLimiter(opts.RequestsPerSecond, burst, log).Handler())
	}

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)

	r.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/items", h.addToCart).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.removeFromCart).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items/{id}/increment", h.incrementLine).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}/decrement", h.decrementLine).Methods(http.MethodPost)

	r.HandleFunc("/checkout", h.confirmOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.cancelOrder).Methods(http.MethodDelete)

	r.HandleFunc("/addresses", h.listAddresses).Methods(http.MethodGet)
	r.HandleFunc("/addresses", h.addAddress).Methods(http.MethodPost)
	r.HandleFunc("/addresses/{index}", h.updateAddress).Methods(http.MethodPut)
	r.HandleFunc("/addresses/{index}", h.deleteAddress).Methods(http.MethodDelete)

	r.HandleFunc("/wishlist", h.listWishlist).Methods(http.MethodGet)
	r.HandleFunc("/wishlist/{id}/toggle", h.toggleWishlist).Methods(http.MethodPost)

	r.HandleFunc("/profile", h.getProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	r.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// --- catalog -----------------------------------------------------------------

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalogsvc.Filter{
		Category:    q.Get("category"),
		Search:      q.Get("search"),
		InStockOnly: q.Get("inStock") == "true",
		Sort:        q.Get("sort"),
	}
	writeJSON(w, http.StatusOK, h.app.Catalog.List(filter))
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.app.Catalog.Product(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("product not found"))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Catalog.Categories())
}

// --- cart --------------------------------------------------------------------

type cartView struct {
	Lines      interface{} `json:"lines"`
	TotalPrice float64     `json:"totalPrice"`
	TotalItems int         `json:"totalItems"`
}

func (h *handler) cartView() cartView {
	return cartView{
		Lines:      h.app.Cart.Lines(),
		TotalPrice: h.app.Cart.TotalPrice(),
		TotalItems: h.app.Cart.TotalItems(),
	}
}

func (h *handler) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, ok := h.app.Catalog.Product(payload.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("product not found"))
		return
	}

	requested := payload.Quantity
	if requested <= 0 {
		requested = product.MinimumQuantity()
	}

	// Stock gate lives here, not in the cart store, so the store stays a
	// pure container.
	inCart := 0
	for _, line := range h.app.Cart.Lines() {
		if line.ProductID == product.ID {
			inCart = line.Quantity
		}
	}
	if inCart+requested > product.Stock {
		writeError(w, http.StatusConflict,
			fmt.Errorf("only %d item(s) available in stock", product.Stock))
		return
	}

	h.app.Cart.Add(product, requested)
	writeJSON(w, http.StatusCreated, h.cartView())
}

func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	h.app.Cart.Remove(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *handler) incrementLine(w http.ResponseWriter, r *http.Request) {
	h.app.Cart.Increment(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *handler) decrementLine(w http.ResponseWriter, r *http.Request) {
	h.app.Cart.Decrement(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, h.cartView())
}

// --- checkout & orders -------------------------------------------------------

func (h *handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AddressIndex int `json:"addressIndex"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	address, err := h.app.Addresses.Get(payload.AddressIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	placed, err := h.app.Checkout.ConfirmOrder(address)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (h *handler) listOrders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Orders.List())
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}
	placed, ok := h.app.Orders.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("order not found"))
		return
	}
	writeJSON(w, http.StatusOK, placed)
}

func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}
	// Cancelling an unknown id is a no-op, mirrored as success here.
	h.app.Orders.Cancel(id)
	w.WriteHeader(http.StatusNoContent)
}

// --- addresses ---------------------------------------------------------------

func (h *handler) listAddresses(w http.ResponseWriter, _ *http.Request) {
	addrs := h.app.Addresses.List()
	if addrs == nil {
		addrs = []profile.Address{}
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *handler) addAddress(w http.ResponseWriter, r *http.Request) {
	var addr profile.Address
	if err := decodeJSON(r.Body, &addr); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	index, err := h.app.Addresses.Add(addr)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": index})
}

func (h *handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid address index"))
		return
	}
	var addr profile.Address
	if err := decodeJSON(r.Body, &addr); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Addresses.Update(index, addr); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Addresses.List())
}

func (h *handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid address index"))
		return
	}
	if err := h.app.Addresses.Delete(index); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- wishlist ----------------------------------------------------------------

func (h *handler) listWishlist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Wishlist.List())
}

func (h *handler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.app.Catalog.Product(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("product not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"wishlisted": h.app.Wishlist.Toggle(id)})
}

// --- profile & auth ----------------------------------------------------------

func (h *handler) getProfile(w http.ResponseWriter, _ *http.Request) {
	user, ok := h.app.Profile.Current()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no active user"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURI string `json:"avatarUri"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := h.app.Profile.Update(payload.Name, payload.Email, payload.AvatarURI)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result := h.app.Profile.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, result)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result := h.app.Profile.Login(r.Context(), payload.Email, payload.Password)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, result)
}

func (h *handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.app.Profile.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers -----------------------------------------------------------------

func decodeJSON(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps typed domain errors onto HTTP statuses and attaches
// their structured details.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *profile.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}

	var ierr *profile.IndexOutOfRangeError
	if errors.As(err, &ierr) {
		writeError(w, http.StatusNotFound, ierr)
		return
	}

	if errors.Is(err, cartsvc.ErrEmptyCart) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	var tooFew *cartsvc.BelowMinimumOrderError
	if errors.As(err, &tooFew) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      tooFew.Error(),
			"violations": tooFew.Violations,
		})
		return
	}

	writeError(w, http.StatusInternalServerError, err)
}
