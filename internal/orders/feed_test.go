package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

func newTestFeed(t *testing.T) (*Feed, *Repository) {
	t.Helper()
	repo := newTestRepo(t)
	feed, err := NewFeed(repo, nil)
	require.NoError(t, err)
	return feed, repo
}

func kitchenFilter() FeedFilter {
	return FeedFilter{
		SellerID: "seller-1",
		Statuses: []enums.OrderStatus{enums.OrderStatusKitchen},
	}
}

func TestSnapshotStatusFilter(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	kitchen := seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))

	settled := activeOrder("seller-1", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1})
	settled.Status = StatusEntry{Label: enums.OrderStatusCompleted, At: time.Now().UTC()}
	settled.StatusHistory = append(settled.StatusHistory, settled.Status)
	seedOrder(t, repo, settled)

	list, err := feed.Snapshot(ctx, kitchenFilter())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kitchen, list[0].ID)
}

func TestSnapshotDropsEmptyOrders(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	seedOrder(t, repo, activeOrder("seller-1"))
	withItems := seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))

	list, err := feed.Snapshot(ctx, kitchenFilter())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, withItems, list[0].ID)
}

func TestSnapshotTableFilterUsesPrecisePath(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	table5 := activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1})
	table5.TableID = "5"
	wanted := seedOrder(t, repo, table5)

	other := activeOrder("seller-1", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1})
	other.TableID = "7"
	seedOrder(t, repo, other)

	filter := kitchenFilter()
	filter.TableID = "5"
	list, err := feed.Snapshot(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, wanted, list[0].ID)
}

func TestSnapshotChannelFilterFallsBack(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	zomato := activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1})
	zomato.PriceVariant = "Zomato"
	wanted := seedOrder(t, repo, zomato)

	tabled := activeOrder("seller-1", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1})
	tabled.TableID = "3"
	tabled.PriceVariant = "Zomato" // routes by table, must not match the channel
	seedOrder(t, repo, tabled)

	seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p3", Title: "Coffee", Price: 30, Quantity: 1}))

	filter := kitchenFilter()
	filter.Channel = "Zomato"
	list, err := feed.Snapshot(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, wanted, list[0].ID)
}

func TestSnapshotDefaultChannel(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	walkIn := seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))

	sentinel := activeOrder("seller-1", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1})
	sentinel.PriceVariant = "⚡Default"
	sentinelID := seedOrder(t, repo, sentinel)

	zomato := activeOrder("seller-1", Item{ProductID: "p3", Title: "Coffee", Price: 30, Quantity: 1})
	zomato.PriceVariant = "Zomato"
	seedOrder(t, repo, zomato)

	filter := kitchenFilter()
	filter.Channel = DefaultChannel
	list, err := feed.Snapshot(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{walkIn, sentinelID}, ids)
}

func TestSnapshotMultiStatus(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))

	placedOnly := Order{
		SellerID:      "seller-1",
		Items:         []Item{{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1}},
		Status:        StatusEntry{Label: enums.OrderStatusPlaced, At: time.Now().UTC()},
		StatusHistory: []StatusEntry{{Label: enums.OrderStatusPlaced, At: time.Now().UTC()}},
		PlacedAt:      time.Now().UTC(),
	}
	seedOrder(t, repo, placedOnly)

	filter := FeedFilter{
		SellerID: "seller-1",
		Statuses: []enums.OrderStatus{enums.OrderStatusKitchen, enums.OrderStatusPlaced},
	}
	list, err := feed.Snapshot(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSnapshotSellerIsolation(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))
	seedOrder(t, repo, activeOrder("seller-2", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1}))

	list, err := feed.Snapshot(ctx, kitchenFilter())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "seller-1", list[0].SellerID)
}

func TestFallbackMatchesPreciseResults(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	table5 := activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1})
	table5.TableID = "5"
	seedOrder(t, repo, table5)
	seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1}))

	filter := kitchenFilter()
	filter.TableID = "5"

	precise, err := feed.Snapshot(ctx, filter)
	require.NoError(t, err)

	coarseRaws, err := feed.coarseQuery(filter).GetOnce(ctx)
	require.NoError(t, err)
	fallback, err := feed.project(filter, coarseRaws, true)
	require.NoError(t, err)

	require.Len(t, fallback, len(precise))
	for i := range precise {
		assert.Equal(t, precise[i].ID, fallback[i].ID)
	}
}

func TestFilterValidation(t *testing.T) {
	feed, _ := newTestFeed(t)
	ctx := context.Background()

	_, err := feed.Snapshot(ctx, FeedFilter{Statuses: []enums.OrderStatus{enums.OrderStatusKitchen}})
	assert.Error(t, err, "missing seller id")

	_, err = feed.Snapshot(ctx, FeedFilter{SellerID: "seller-1"})
	assert.Error(t, err, "missing statuses")

	_, err = feed.Snapshot(ctx, FeedFilter{SellerID: "seller-1", Statuses: []enums.OrderStatus{"BURNT"}})
	assert.Error(t, err, "invalid status")

	filter := kitchenFilter()
	filter.TableID = "5"
	filter.Channel = "Zomato"
	_, err = feed.Snapshot(ctx, filter)
	assert.Error(t, err, "table and channel are mutually exclusive")
}

func TestSubscribeDeliversOnChange(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	id := seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))

	snapshots := make(chan []Order, 4)
	unsubscribe, err := feed.Subscribe(ctx, kitchenFilter(), func(list []Order) { snapshots <- list }, nil)
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case list := <-snapshots:
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("initial snapshot never arrived")
	}

	require.NoError(t, repo.Update(ctx, id, map[string]any{
		"status": StatusEntry{Label: enums.OrderStatusCompleted, At: time.Now().UTC()},
	}))

	select {
	case list := <-snapshots:
		assert.Empty(t, list, "settled order left the kitchen feed")
	case <-time.After(2 * time.Second):
		t.Fatal("change snapshot never arrived")
	}
}

func TestSubscribeUnsubscribeBeforeFirstSnapshot(t *testing.T) {
	feed, repo := newTestFeed(t)
	seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1}))

	var mu sync.Mutex
	tornDown := false
	lateDelivery := false
	unsubscribe, err := feed.Subscribe(context.Background(), kitchenFilter(), func([]Order) {
		mu.Lock()
		if tornDown {
			lateDelivery = true
		}
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	unsubscribe()
	mu.Lock()
	tornDown = true
	mu.Unlock()
	unsubscribe() // idempotent

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, lateDelivery, "callback invoked after unsubscribe returned")
}

func TestSubscribeChannelFilterFallsBack(t *testing.T) {
	feed, repo := newTestFeed(t)
	ctx := context.Background()

	zomato := activeOrder("seller-1", Item{ProductID: "p1", Title: "Tea", Price: 20, Quantity: 1})
	zomato.PriceVariant = "Zomato"
	wanted := seedOrder(t, repo, zomato)
	seedOrder(t, repo, activeOrder("seller-1", Item{ProductID: "p2", Title: "Toast", Price: 40, Quantity: 1}))

	filter := kitchenFilter()
	filter.Channel = "Zomato"

	snapshots := make(chan []Order, 4)
	unsubscribe, err := feed.Subscribe(ctx, filter, func(list []Order) { snapshots <- list }, nil)
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case list := <-snapshots:
		require.Len(t, list, 1)
		assert.Equal(t, wanted, list[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("initial snapshot never arrived")
	}
}
