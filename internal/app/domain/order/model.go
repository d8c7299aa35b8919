package order

import (
	"time"

	"github.com/lunaredge/storefront/internal/app/domain/cart"
	"github.com/lunaredge/storefront/internal/app/domain/profile"
)

// Order is an immutable record of a placed order. Lines, address and total
// are snapshots taken at placement time; the only permitted transition
// afterwards is cancellation, which removes the order from the ledger.
type Order struct {
	ID        int             `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Lines     []cart.Line     `json:"items"`
	Address   profile.Address `json:"address"`
	Total     string          `json:"total"`
}

// Clone deep-copies the order including its line snapshot.
func (o Order) Clone() Order {
	out := o
	out.Lines = cart.CloneLines(o.Lines)
	return out
}

// CloneOrders deep-copies an order sequence.
func CloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
