package cart

// Line is a single product's presence in the cart. The unit price is
// snapshotted when the line is created and never re-read from the catalog,
// so later catalog price changes do not affect an open cart.
type Line struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns the line's contribution to the cart total.
func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// CloneLines deep-copies a cart line sequence.
func CloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
