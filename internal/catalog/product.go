// Package catalog manages the seller's product and inventory records.
package catalog

import (
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Collection is the docstore collection holding product documents.
const Collection = "products"

// CollectionSpec declares the queryable surface of the products collection.
func CollectionSpec() docstore.CollectionSpec {
	return docstore.CollectionSpec{
		Name:          Collection,
		IndexedFields: []string{"sellerId", "category"},
		CompositeIndexes: [][]string{
			{"sellerId", "category"},
		},
	}
}

// Product is one sellable catalog entry.
type Product struct {
	ID        string  `json:"-"`
	SellerID  string  `json:"sellerId"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price"`
	MRP       float64 `json:"mrp,omitempty"`
	InStock   bool    `json:"inStock"`
	StockQty  int     `json:"stockQty"`
}

func decodeProduct(raw docstore.RawDoc) (Product, error) {
	var product Product
	if err := raw.Decode(&product); err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product document")
	}
	product.ID = raw.ID
	if product.StockQty < 0 {
		product.StockQty = 0
	}
	return product, nil
}
