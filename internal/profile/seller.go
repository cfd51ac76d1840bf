// Package profile manages the seller's business profile and outlet settings.
// The profile owns the authoritative table list, the configured charges
// applied to new orders, and the printer settings used by ticket rendering.
package profile

import (
	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Collection is the docstore collection holding seller profile documents.
const Collection = "sellers"

// CollectionSpec declares the queryable surface of the sellers collection.
// Profiles are looked up by sellerId only; one document per seller.
func CollectionSpec() docstore.CollectionSpec {
	return docstore.CollectionSpec{
		Name:          Collection,
		IndexedFields: []string{"sellerId"},
	}
}

// PrinterSettings configures receipt and KOT rendering for the outlet.
type PrinterSettings struct {
	ReceiptWidth int    `json:"receiptWidth,omitempty"`
	CurrencySign string `json:"currencySign,omitempty"`
	FooterNote   string `json:"footerNote,omitempty"`
}

// Seller is the outlet profile document.
type Seller struct {
	ID       string          `json:"-"`
	SellerID string          `json:"sellerId"`
	Name     string          `json:"name"`
	Address  string          `json:"address,omitempty"`
	Phone    string          `json:"phone,omitempty"`
	GSTIN    string          `json:"gstin,omitempty"`
	Tables   []string        `json:"tables"`
	Charges  []orders.Charge `json:"charges"`
	Printer  PrinterSettings `json:"printer"`
	Channels []string        `json:"channels"`
}

func decodeSeller(raw docstore.RawDoc) (Seller, error) {
	var seller Seller
	if err := raw.Decode(&seller); err != nil {
		return Seller{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode seller document")
	}
	seller.ID = raw.ID
	if seller.Tables == nil {
		seller.Tables = []string{}
	}
	if seller.Charges == nil {
		seller.Charges = []orders.Charge{}
	}
	if seller.Channels == nil {
		seller.Channels = []string{}
	}
	return seller, nil
}
