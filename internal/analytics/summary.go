// Package analytics aggregates settled orders into the dashboard summary.
// All aggregation is in-process decimal math over the orders collection; no
// external warehouse is involved.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

const (
	topProductLimit = 10

	// settledScanLimit bounds the settled-order scan so a summary request
	// cannot pull an unbounded result set.
	settledScanLimit = 10000
)

// BucketStats aggregates one table or channel bucket.
type BucketStats struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// ProductStats aggregates one product across the range.
type ProductStats struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// Summary is the dashboard aggregate for a date range.
type Summary struct {
	From          time.Time              `json:"from"`
	To            time.Time              `json:"to"`
	OrderCount    int                    `json:"orderCount"`
	Revenue       float64                `json:"revenue"`
	AverageTicket float64                `json:"averageTicket"`
	ByChannel     map[string]BucketStats `json:"byChannel"`
	ByTable       map[string]BucketStats `json:"byTable"`
	TopProducts   []ProductStats         `json:"topProducts"`
}

// OrderSource is the slice of the orders service the summary needs.
type OrderSource interface {
	List(ctx context.Context, sess session.Session, filter orders.FeedFilter) ([]orders.Order, error)
}

// Service computes analytics summaries.
type Service interface {
	Summary(ctx context.Context, sess session.Session, from, to time.Time) (Summary, error)
}

type service struct {
	source OrderSource
}

// NewService builds the analytics service over the orders feed.
func NewService(source OrderSource) (Service, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order source is required")
	}
	return &service{source: source}, nil
}

// Summary aggregates the seller's completed orders placed within [from, to].
// The scan covers the newest settledScanLimit completed orders; a range that
// falls entirely behind that horizon reports fewer orders than were settled.
func (s *service) Summary(ctx context.Context, sess session.Session, from, to time.Time) (Summary, error) {
	if to.Before(from) {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "range end precedes range start")
	}

	settled, err := s.source.List(ctx, sess, orders.FeedFilter{
		Statuses: []enums.OrderStatus{enums.OrderStatusCompleted},
		Limit:    settledScanLimit,
	})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		From:      from,
		To:        to,
		ByChannel: map[string]BucketStats{},
		ByTable:   map[string]BucketStats{},
	}
	revenue := decimal.Zero
	products := map[string]*ProductStats{}

	inRange := make([]orders.Order, 0, len(settled))
	for _, order := range settled {
		if order.PlacedAt.Before(from) || order.PlacedAt.After(to) {
			continue
		}
		inRange = append(inRange, order)
	}

	grouped := orders.Classify(inRange)
	for table, bucket := range grouped.TableOrders {
		summary.ByTable[table] = bucketStats(bucket)
	}
	for channel, bucket := range grouped.ChannelOrders {
		summary.ByChannel[channel] = bucketStats(bucket)
	}

	for _, order := range inRange {
		summary.OrderCount++
		revenue = revenue.Add(order.Total())
		for _, item := range order.Items {
			stats, ok := products[item.ProductID]
			if !ok {
				stats = &ProductStats{ProductID: item.ProductID, Title: item.Title}
				products[item.ProductID] = stats
			}
			stats.Quantity += item.Quantity
			lineRevenue, _ := item.SubTotal().Float64()
			stats.Revenue += lineRevenue
		}
	}

	summary.Revenue, _ = revenue.Float64()
	if summary.OrderCount > 0 {
		avg := revenue.Div(decimal.NewFromInt(int64(summary.OrderCount)))
		summary.AverageTicket, _ = avg.Round(2).Float64()
	}

	summary.TopProducts = rankProducts(products)
	return summary, nil
}

func bucketStats(bucket []orders.Order) BucketStats {
	revenue := decimal.Zero
	for _, order := range bucket {
		revenue = revenue.Add(order.Total())
	}
	value, _ := revenue.Float64()
	return BucketStats{Orders: len(bucket), Revenue: value}
}

func rankProducts(products map[string]*ProductStats) []ProductStats {
	ranked := make([]ProductStats, 0, len(products))
	for _, stats := range products {
		ranked = append(ranked, *stats)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	return ranked
}
