package orders

import (
	"time"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

const (
	stalenessSlowAfter = 15 * time.Minute
	stalenessLateAfter = 30 * time.Minute
)

// StalenessOf maps an order timestamp to the coarse urgency bucket used for
// visual cues. A zero or future timestamp yields the neutral bucket rather
// than an error.
func StalenessOf(ts, now time.Time) enums.Staleness {
	if ts.IsZero() || ts.After(now) {
		return enums.StalenessOK
	}
	switch waited := now.Sub(ts); {
	case waited > stalenessLateAfter:
		return enums.StalenessLate
	case waited > stalenessSlowAfter:
		return enums.StalenessSlow
	default:
		return enums.StalenessOK
	}
}

// Staleness buckets the order by how long it has waited since placement.
func (o Order) Staleness(now time.Time) enums.Staleness {
	return StalenessOf(o.PlacedAt, now)
}
