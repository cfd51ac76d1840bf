package enums

// Staleness is the coarse urgency bucket for an order's waiting time.
type Staleness string

const (
	StalenessOK   Staleness = "ok"
	StalenessSlow Staleness = "slow"
	StalenessLate Staleness = "late"
)

// String implements fmt.Stringer.
func (s Staleness) String() string {
	return string(s)
}
