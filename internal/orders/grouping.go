package orders

// DefaultChannel is the implicit channel for walk-in orders that carry
// neither a table nor a named price variant.
const DefaultChannel = "Default"

// defaultChannelSentinels are priceVariant values that mean "no channel".
var defaultChannelSentinels = map[string]bool{
	"Default":  true,
	"⚡Default": true,
}

// Grouped is the classification of a flat order list into table and channel
// buckets. An order appears in exactly one bucket.
type Grouped struct {
	TableOrders   map[string][]Order `json:"tableOrders"`
	ChannelOrders map[string][]Order `json:"channelOrders"`
}

// Classify buckets orders by table first, then by named channel, then under
// the default channel. An order with both tableId and priceVariant set routes
// by tableId alone. Classification is stateless and recomputed per snapshot;
// relative order within a bucket follows the input order.
func Classify(list []Order) Grouped {
	grouped := Grouped{
		TableOrders:   map[string][]Order{},
		ChannelOrders: map[string][]Order{},
	}
	for _, order := range list {
		table, channel := routeOf(order)
		if table != "" {
			grouped.TableOrders[table] = append(grouped.TableOrders[table], order)
			continue
		}
		grouped.ChannelOrders[channel] = append(grouped.ChannelOrders[channel], order)
	}
	return grouped
}

// Route resolves the single bucket the order belongs to. Exactly one of the
// returned values is non-empty.
func (o Order) Route() (table, channel string) {
	return routeOf(o)
}

// routeOf resolves the single bucket an order belongs to. Exactly one of the
// returned values is non-empty.
func routeOf(order Order) (table, channel string) {
	if order.TableID != "" {
		return order.TableID, ""
	}
	if order.PriceVariant != "" && !defaultChannelSentinels[order.PriceVariant] {
		return "", order.PriceVariant
	}
	return "", DefaultChannel
}
