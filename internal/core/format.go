package core

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

var serverTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseServerTime parses the MySQL-style timestamps the API returns.
// Timestamps without a zone are wall-clock times in the local zone.
func ParseServerTime(s string) (time.Time, bool) {
	return ParseServerTimeIn(s, time.Local)
}

// ParseServerTimeIn is ParseServerTime with zone-less timestamps read in loc.
func ParseServerTimeIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range serverTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a server timestamp as "Jan 2, 2006", or returns it
// unchanged when it cannot be parsed.
func FormatDate(s string) string {
	t, ok := ParseServerTime(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// FormatAmount renders money with thousands separators and at most two decimals.
func FormatAmount(d decimal.Decimal) string {
	return humanize.Commaf(d.Round(2).InexactFloat64())
}

var dueSinceMagnitudes = []humanize.RelTimeMagnitude{
	{D: day, Format: "today", DivBy: 1},
	{D: 2 * day, Format: "yesterday", DivBy: 1},
	{D: 7 * day, Format: "%d days %s", DivBy: day},
	{D: 30 * day, Format: "%d weeks %s", DivBy: 7 * day},
	{D: 365 * day, Format: "%d months %s", DivBy: 30 * day},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: 365 * day},
}

// DueSince describes how long ago a ledger entry was raised. Future dates
// read as "today"; unparseable dates as "N/A".
func DueSince(date string, now time.Time) string {
	t, ok := ParseServerTime(date)
	if !ok {
		return "N/A"
	}
	if t.After(now) {
		return "today"
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", dueSinceMagnitudes)
}
