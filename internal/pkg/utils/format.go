package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatPrice renders a monthly rent as "HK$45,000". Nil or non-positive
// prices render as an empty string.
func FormatPrice(price *int) string {
	if price == nil || *price <= 0 {
		return ""
	}
	return "HK$" + humanize.Comma(int64(*price))
}

// Ago renders t relative to now, e.g. "3 days ago".
func Ago(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}
