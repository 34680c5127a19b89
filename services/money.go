package services

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// addAmount sums minor units and refuses to wrap around.
func addAmount(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

func mulAmount(price, qty int64) (int64, error) {
	if price == 0 || qty == 0 {
		return 0, nil
	}
	if price > math.MaxInt64/qty {
		return 0, ErrAmountOverflow
	}
	return price * qty, nil
}

// newReference returns PREFIX-<32 hex>, unique across tenants.
func newReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
