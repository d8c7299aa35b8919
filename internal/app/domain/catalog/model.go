package catalog

// Product is a read-only catalog record as supplied by the product data
// source. Prices are pre-discount; the effective unit price is derived at
// cart add-time.
type Product struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description,omitempty"`
	Category             string   `json:"category"`
	Price                float64  `json:"price"`
	DiscountPercentage   float64  `json:"discountPercentage"`
	Rating               float64  `json:"rating"`
	Stock                int      `json:"stock"`
	Thumbnail            string   `json:"thumbnail,omitempty"`
	MinimumOrderQuantity int      `json:"minimumOrderQuantity"`
	Tags                 []string `json:"tags,omitempty"`
}

// DiscountedPrice returns the effective price after the catalog discount,
// rounded to two decimal places.
func (p Product) DiscountedPrice() float64 {
	return Round2(p.Price * (1 - p.DiscountPercentage/100))
}

// MinimumQuantity returns the product's minimum order quantity, defaulting
// to 1 when the catalog record carries none.
func (p Product) MinimumQuantity() int {
	if p.MinimumOrderQuantity < 1 {
		return 1
	}
	return p.MinimumOrderQuantity
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
