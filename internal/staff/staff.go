// Package staff manages the seller's staff accounts and PIN authentication.
package staff

import (
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Collection is the docstore collection holding staff documents.
const Collection = "staff"

// CollectionSpec declares the queryable surface of the staff collection.
func CollectionSpec() docstore.CollectionSpec {
	return docstore.CollectionSpec{
		Name:          Collection,
		IndexedFields: []string{"sellerId", "name"},
		CompositeIndexes: [][]string{
			{"sellerId", "name"},
		},
	}
}

// Staff is one staff account. The PIN hash never leaves the service layer.
type Staff struct {
	ID       string          `json:"-"`
	SellerID string          `json:"sellerId"`
	Name     string          `json:"name"`
	Role     enums.StaffRole `json:"role"`
	PINHash  string          `json:"pinHash"`
	Active   bool            `json:"active"`
}

// Public is the staff shape exposed over the API.
type Public struct {
	ID       string          `json:"id"`
	SellerID string          `json:"sellerId"`
	Name     string          `json:"name"`
	Role     enums.StaffRole `json:"role"`
	Active   bool            `json:"active"`
}

// Public strips the credential material.
func (s Staff) Public() Public {
	return Public{ID: s.ID, SellerID: s.SellerID, Name: s.Name, Role: s.Role, Active: s.Active}
}

func decodeStaff(raw docstore.RawDoc) (Staff, error) {
	var member Staff
	if err := raw.Decode(&member); err != nil {
		return Staff{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode staff document")
	}
	member.ID = raw.ID
	return member, nil
}
