package cart

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned by checkout validation when the cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// Violation describes one line below its product's minimum order quantity.
type Violation struct {
	ProductID       string `json:"productId"`
	Title           string `json:"title,omitempty"`
	Quantity        int    `json:"quantity"`
	MinimumRequired int    `json:"minimumRequired"`
}

// BelowMinimumOrderError is returned by checkout validation when one or more
// lines do not meet their minimum order quantity.
type BelowMinimumOrderError struct {
	Violations []Violation
}

func (e *BelowMinimumOrderError) Error() string {
	return fmt.Sprintf("minimum order quantity not met for %d line(s)", len(e.Violations))
}
