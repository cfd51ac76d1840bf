package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

type stubOrderSource struct {
	orders []orders.Order
	filter orders.FeedFilter
}

func (s *stubOrderSource) List(_ context.Context, _ session.Session, filter orders.FeedFilter) ([]orders.Order, error) {
	s.filter = filter
	return s.orders, nil
}

func completedOrder(id string, placedAt time.Time, tableID, priceVariant string, items ...orders.Item) orders.Order {
	return orders.Order{
		ID:           id,
		SellerID:     "seller-1",
		Items:        items,
		Status:       orders.StatusEntry{Label: enums.OrderStatusCompleted, At: placedAt.Add(time.Hour)},
		TableID:      tableID,
		PriceVariant: priceVariant,
		PlacedAt:     placedAt,
	}
}

func TestSummaryAggregatesRange(t *testing.T) {
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	source := &stubOrderSource{orders: []orders.Order{
		completedOrder("o-1", base, "T1", "",
			orders.Item{ProductID: "p-1", Title: "Masala Dosa", Price: 120, Quantity: 2},
		),
		completedOrder("o-2", base.Add(30*time.Minute), "", "Zomato",
			orders.Item{ProductID: "p-2", Title: "Filter Coffee", Price: 40, Quantity: 3},
			orders.Item{ProductID: "p-1", Title: "Masala Dosa", Price: 120, Quantity: 1},
		),
		completedOrder("o-3", base.Add(2*time.Hour), "", "",
			orders.Item{ProductID: "p-3", Title: "Idli", Price: 60, Quantity: 1},
		),
		// Placed outside the range; must not count.
		completedOrder("o-4", base.Add(-48*time.Hour), "T1", "",
			orders.Item{ProductID: "p-1", Title: "Masala Dosa", Price: 120, Quantity: 5},
		),
	}}
	svc, err := NewService(source)
	require.NoError(t, err)

	got, err := svc.Summary(context.Background(), session.Session{SellerID: "seller-1", UserID: "user-1", Role: enums.StaffRoleOwner}, base.Add(-time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusCompleted}, source.filter.Statuses)

	assert.Equal(t, 3, got.OrderCount)
	assert.InDelta(t, 240+240+60, got.Revenue, 0.001)
	assert.InDelta(t, 180.0, got.AverageTicket, 0.001)

	require.Contains(t, got.ByTable, "T1")
	assert.Equal(t, 1, got.ByTable["T1"].Orders)
	assert.InDelta(t, 240, got.ByTable["T1"].Revenue, 0.001)

	require.Contains(t, got.ByChannel, "Zomato")
	assert.InDelta(t, 240, got.ByChannel["Zomato"].Revenue, 0.001)
	require.Contains(t, got.ByChannel, orders.DefaultChannel)
	assert.Equal(t, 1, got.ByChannel[orders.DefaultChannel].Orders)

	require.Len(t, got.TopProducts, 3)
	assert.Equal(t, "p-1", got.TopProducts[0].ProductID)
	assert.Equal(t, 3, got.TopProducts[0].Quantity)
	assert.InDelta(t, 360, got.TopProducts[0].Revenue, 0.001)
	assert.Equal(t, "p-2", got.TopProducts[1].ProductID)
}

func TestSummaryDiscountAndChargesShapeRevenue(t *testing.T) {
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	order := completedOrder("o-1", base, "", "",
		orders.Item{ProductID: "p-1", Title: "Thali", Price: 200, Quantity: 1},
	)
	order.Discount = 20
	order.Charges = []orders.Charge{
		{Name: "Service", Value: 10, Type: enums.ChargeTypePercentage},
		{Name: "GST", Value: 9, Type: enums.ChargeTypePercentage, Inclusive: true},
	}
	source := &stubOrderSource{orders: []orders.Order{order}}
	svc, err := NewService(source)
	require.NoError(t, err)

	got, err := svc.Summary(context.Background(), session.Session{SellerID: "seller-1", UserID: "user-1", Role: enums.StaffRoleOwner}, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)

	// 200 - 20 discount + 10% of 200, inclusive GST ignored.
	assert.InDelta(t, 200.0, got.Revenue, 0.001)
	assert.InDelta(t, 200.0, got.AverageTicket, 0.001)
}

func TestSummaryEmptyRange(t *testing.T) {
	source := &stubOrderSource{}
	svc, err := NewService(source)
	require.NoError(t, err)

	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	got, err := svc.Summary(context.Background(), session.Session{SellerID: "seller-1", UserID: "user-1", Role: enums.StaffRoleOwner}, base, base.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Zero(t, got.OrderCount)
	assert.Zero(t, got.Revenue)
	assert.Zero(t, got.AverageTicket)
	assert.Empty(t, got.TopProducts)
	assert.Empty(t, got.ByTable)
	assert.Empty(t, got.ByChannel)
}

func TestSummaryInvalidRange(t *testing.T) {
	svc, err := NewService(&stubOrderSource{})
	require.NoError(t, err)

	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.Summary(context.Background(), session.Session{SellerID: "seller-1", UserID: "user-1", Role: enums.StaffRoleOwner}, base, base.Add(-time.Minute))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
