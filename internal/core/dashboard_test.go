package core_test

import (
	"testing"
	"time"

	"agent-portal/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidence_Balance(t *testing.T) {
	tests := []struct {
		sale, paid, want string
	}{
		{"0", "0", "0"},
		{"5000", "0", "5000"},
		{"5000", "5000", "0"},
		{"4200.50", "1200.25", "3000.25"},
	}
	for _, tt := range tests {
		r := core.Residence{SalePrice: d(tt.sale), TotalPaid: d(tt.paid)}
		assert.True(t, d(tt.want).Equal(r.Balance()), "%s - %s = %s", tt.sale, tt.paid, r.Balance())
	}
}

func TestComputeDashboardStats(t *testing.T) {
	residences := []core.Residence{
		{CompletedStep: 10, SalePrice: d("1000"), TotalPaid: d("1000")},
		{CompletedStep: 4, SalePrice: d("2000"), TotalPaid: d("500")},
		{CompletedStep: 2, Cancelled: 1, SalePrice: d("300")},
		{CompletedStep: 0},
	}
	stats := core.ComputeDashboardStats(residences)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.InProgress)
	assert.True(t, d("3300").Equal(stats.TotalSale))
	assert.True(t, d("1500").Equal(stats.TotalPaid))
}

func TestComputeDashboardStats_Empty(t *testing.T) {
	stats := core.ComputeDashboardStats(nil)
	assert.Zero(t, stats.Total)
	assert.True(t, stats.TotalSale.IsZero())
	assert.True(t, stats.TotalPaid.IsZero())
}

func TestSearchResidences(t *testing.T) {
	residences := []core.Residence{
		{ResidenceID: 1, PassengerName: "Ahmed Khan", PassportNumber: "P123", CompanyName: "Sun Trips"},
		{ResidenceID: 2, PassengerName: "Maria Lopez", PassportNumber: "X998"},
		{ResidenceID: 3, PassengerName: "John Doe", PassportNumber: "Z111", CompanyName: "Desert Co"},
	}
	ids := func(rs []core.Residence) []int {
		var out []int
		for _, r := range rs {
			out = append(out, r.ResidenceID)
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3}, ids(core.SearchResidences(residences, "")))
	assert.Equal(t, []int{1}, ids(core.SearchResidences(residences, "khan")))
	assert.Equal(t, []int{2}, ids(core.SearchResidences(residences, "x99")))
	assert.Equal(t, []int{3}, ids(core.SearchResidences(residences, "DESERT")))
	assert.Empty(t, core.SearchResidences(residences, "nobody"))
}

func TestDueSince(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.Local)
	tests := []struct {
		date, want string
	}{
		{"2025-06-30 08:00:00", "today"},
		{"2025-06-29 11:00:00", "yesterday"},
		{"2025-06-26 12:00:00", "4 days ago"},
		{"2025-06-16", "2 weeks ago"},
		{"2025-03-01 00:00:00", "4 months ago"},
		{"2022-06-01", "3 years ago"},
		{"2025-07-15", "today"},
		{"", "N/A"},
		{"not a date", "N/A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.DueSince(tt.date, now), tt.date)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", core.FormatAmount(decimal.Zero))
	assert.Equal(t, "1,234,567.5", core.FormatAmount(d("1234567.5")))
	assert.Equal(t, "-1,500", core.FormatAmount(d("-1500")))
	assert.Equal(t, "10.13", core.FormatAmount(d("10.129")))
}

func TestParseServerTimeIn(t *testing.T) {
	dubai := time.FixedZone("GST", 4*60*60)

	got, ok := core.ParseServerTimeIn("2025-06-30 01:30:00", dubai)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 29, 21, 30, 0, 0, time.UTC), got.UTC())

	got, ok = core.ParseServerTimeIn("2025-06-30T01:30:00Z", dubai)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 30, 1, 30, 0, 0, time.UTC), got.UTC())

	_, ok = core.ParseServerTimeIn(" ", dubai)
	assert.False(t, ok)
}

func TestDueSince_LocalMidnight(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 30, 0, 0, time.Local)
	assert.Equal(t, "today", core.DueSince("2025-06-30 00:10:00", now))
	assert.Equal(t, "yesterday", core.DueSince("2025-06-28 23:00:00", now))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jan 5, 2024", core.FormatDate("2024-01-05 10:22:11"))
	assert.Equal(t, "garbage", core.FormatDate("garbage"))
}
