package utils

import (
	"strconv"
	"strings"
)

// CurrencySuffix is appended by FormatAmount (CFA franc by default).
var CurrencySuffix = "F"

// FormatAmount formats minor units with a dot as thousands separator.
// Example: 1250000 -> "1.250.000 F", -300 -> "-300 F"
func FormatAmount(amount int64) string {
	neg := amount < 0
	digits := strconv.FormatInt(amount, 10)
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	if CurrencySuffix != "" {
		b.WriteByte(' ')
		b.WriteString(CurrencySuffix)
	}
	return b.String()
}
