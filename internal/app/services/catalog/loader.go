package catalog

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	domain "github.com/lunaredge/storefront/internal/app/domain/catalog"
)

// LoadFile reads a product catalog document from disk. The document follows
// the dummyjson shape: a top-level "products" array carrying many more
// fields than the storefront needs, so only the relevant subset is
// extracted.
func LoadFile(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse extracts products from a raw catalog document.
func Parse(data []byte) ([]domain.Product, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("catalog: document is not valid JSON")
	}

	items := gjson.GetBytes(data, "products")
	if !items.IsArray() {
		return nil, fmt.Errorf("catalog: document has no products array")
	}

	var products []domain.Product
	var badID bool
	items.ForEach(func(_, item gjson.Result) bool {
		id := item.Get("id").String()
		if id == "" {
			badID = true
			return false
		}
		p := domain.Product{
			ID:                   id,
			Title:                item.Get("title").String(),
			Description:          item.Get("description").String(),
			Category:             item.Get("category").String(),
			Price:                item.Get("price").Float(),
			DiscountPercentage:   item.Get("discountPercentage").Float(),
			Rating:               item.Get("rating").Float(),
			Stock:                int(item.Get("stock").Int()),
			Thumbnail:            item.Get("thumbnail").String(),
			MinimumOrderQuantity: int(item.Get("minimumOrderQuantity").Int()),
		}
		item.Get("tags").ForEach(func(_, tag gjson.Result) bool {
			p.Tags = append(p.Tags, tag.String())
			return true
		})
		products = append(products, p)
		return true
	})
	if badID {
		return nil, fmt.Errorf("catalog: product without id")
	}
	return products, nil
}
