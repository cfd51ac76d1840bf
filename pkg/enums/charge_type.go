package enums

import (
	"fmt"
	"strings"
)

// ChargeType categorizes seller-configured order charges.
type ChargeType string

const (
	ChargeTypePercentage ChargeType = "percentage"
	ChargeTypeFixed      ChargeType = "fixed"
)

var validChargeTypes = []ChargeType{
	ChargeTypePercentage,
	ChargeTypeFixed,
}

// String implements fmt.Stringer.
func (c ChargeType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ChargeType) IsValid() bool {
	for _, candidate := range validChargeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChargeType converts raw input into a ChargeType.
func ParseChargeType(value string) (ChargeType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validChargeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid charge type %q", value)
}
