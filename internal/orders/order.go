// Package orders implements the order lifecycle: the typed order document,
// the single-order entity with its sanctioned mutations, the live feed over
// the document store, and the table/channel grouping rules.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Item is one order line. Items are embedded in the order document and are
// not independently addressable.
type Item struct {
	ProductID string  `json:"id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price"`
	MRP       float64 `json:"mrp,omitempty"`
	Served    bool    `json:"served"`
	Quantity  int     `json:"qnt"`
}

// SubTotal is price times quantity for the line.
func (i Item) SubTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusEntry is one append-only status history record.
type StatusEntry struct {
	Label enums.OrderStatus `json:"label"`
	At    time.Time         `json:"at"`
}

// Charge is a seller-configured order charge (tax, service, packing).
type Charge struct {
	Name      string           `json:"name"`
	Value     float64          `json:"value"`
	Type      enums.ChargeType `json:"type"`
	Inclusive bool             `json:"inclusive"`
}

// Amount computes the charge against the given subtotal. Inclusive charges
// are informational and contribute zero.
func (c Charge) Amount(subTotal decimal.Decimal) decimal.Decimal {
	if c.Inclusive {
		return decimal.Zero
	}
	switch c.Type {
	case enums.ChargeTypePercentage:
		return subTotal.Mul(decimal.NewFromFloat(c.Value)).Div(decimal.NewFromInt(100))
	default:
		return decimal.NewFromFloat(c.Value)
	}
}

// CustomerRef points an order at a CRM customer record.
type CustomerRef struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Order is the typed order document. Identity is immutable once created;
// everything else mutates through the Entity.
type Order struct {
	ID            string            `json:"-"`
	SellerID      string            `json:"sellerId"`
	Items         []Item            `json:"items"`
	Status        StatusEntry       `json:"status"`
	StatusHistory []StatusEntry     `json:"statusHistory"`
	TableID       string            `json:"tableId,omitempty"`
	PriceVariant  string            `json:"priceVariant,omitempty"`
	Discount      float64           `json:"discount"`
	Charges       []Charge          `json:"charges,omitempty"`
	PaymentMode   enums.PaymentMode `json:"paymentMode,omitempty"`
	BillNo        int64             `json:"billNo,omitempty"`
	Customer      *CustomerRef      `json:"customer,omitempty"`
	PlacedAt      time.Time         `json:"placedAt"`
}

// decodeOrder types and defaults a raw store document at the read boundary.
// Loosely-shaped documents get their optional fields normalized here so the
// rest of the package never re-checks them.
func decodeOrder(raw docstore.RawDoc) (Order, error) {
	var order Order
	if err := raw.Decode(&order); err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order document")
	}
	order.ID = raw.ID
	if order.Items == nil {
		order.Items = []Item{}
	}
	if order.StatusHistory == nil {
		order.StatusHistory = []StatusEntry{}
	}
	if order.Status.Label == "" && len(order.StatusHistory) > 0 {
		order.Status = order.StatusHistory[len(order.StatusHistory)-1]
	}
	if order.Discount < 0 {
		order.Discount = 0
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = raw.CreatedAt
	}
	return order, nil
}

func decodeOrders(raws []docstore.RawDoc) ([]Order, error) {
	out := make([]Order, 0, len(raws))
	for _, raw := range raws {
		order, err := decodeOrder(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

// TotalItems is the sum of line quantities.
func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// ServedItems is the sum of quantities on lines marked served.
func (o Order) ServedItems() int {
	served := 0
	for _, item := range o.Items {
		if item.Served {
			served += item.Quantity
		}
	}
	return served
}

// SubTotal is the sum of line subtotals.
func (o Order) SubTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.SubTotal())
	}
	return sum
}

// Total is subtotal minus discount plus exclusive charges.
func (o Order) Total() decimal.Decimal {
	subTotal := o.SubTotal()
	total := subTotal.Sub(decimal.NewFromFloat(o.Discount))
	for _, charge := range o.Charges {
		total = total.Add(charge.Amount(subTotal))
	}
	return total
}

// HasStatus reports whether the label already appears in the history.
func (o Order) HasStatus(label enums.OrderStatus) bool {
	for _, entry := range o.StatusHistory {
		if entry.Label == label {
			return true
		}
	}
	return false
}

// CurrentStatus is the last appended status entry.
func (o Order) CurrentStatus() StatusEntry {
	return o.Status
}

// IsTerminal reports whether the order reached a final state.
func (o Order) IsTerminal() bool {
	return o.Status.Label.IsTerminal()
}

func (o Order) itemIndex(productID string) int {
	for i, item := range o.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
