// Package customers is the POS CRM: customer records, phone lookup, and the
// spend/visit rollup fed by order settlement.
package customers

import (
	"time"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Collection is the docstore collection holding customer documents.
const Collection = "customers"

// CollectionSpec declares the queryable surface of the customers collection.
func CollectionSpec() docstore.CollectionSpec {
	return docstore.CollectionSpec{
		Name:          Collection,
		IndexedFields: []string{"sellerId", "phone"},
		CompositeIndexes: [][]string{
			{"sellerId", "phone"},
		},
	}
}

// Customer is one CRM record.
type Customer struct {
	ID         string    `json:"-"`
	SellerID   string    `json:"sellerId"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	TotalSpent float64   `json:"totalSpent"`
	Visits     int       `json:"visits"`
	LastSeen   time.Time `json:"lastSeen,omitempty"`
}

func decodeCustomer(raw docstore.RawDoc) (Customer, error) {
	var customer Customer
	if err := raw.Decode(&customer); err != nil {
		return Customer{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode customer document")
	}
	customer.ID = raw.ID
	if customer.TotalSpent < 0 {
		customer.TotalSpent = 0
	}
	if customer.Visits < 0 {
		customer.Visits = 0
	}
	return customer, nil
}
