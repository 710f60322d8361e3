package core_test

import (
	"testing"

	"agent-portal/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedgerRecord_Totals(t *testing.T) {
	r := core.LedgerRecord{
		SalePrice:           d("5000"),
		Fine:                d("200"),
		CancellationCharges: d("0"),
		TawjeehCharges:      d("150"),
		ILOECharges:         d("75.50"),
		CustomCharges:       d("24.50"),
		ResidencePayment:    d("3000"),
		FinePayment:         d("200"),
		TawjeehPayments:     d("150"),
		ILOEPayments:        d("0"),
	}
	assert.True(t, d("5450").Equal(r.TotalCharges()), r.TotalCharges().String())
	assert.True(t, d("3350").Equal(r.TotalPaid()), r.TotalPaid().String())
	assert.True(t, d("2100").Equal(r.Balance()), r.Balance().String())
}

func TestLedgerRecord_ZeroValues(t *testing.T) {
	var r core.LedgerRecord
	assert.True(t, r.TotalCharges().IsZero())
	assert.True(t, r.TotalPaid().IsZero())
	assert.True(t, r.Balance().IsZero())
}

func TestLedgerRecord_Overpaid(t *testing.T) {
	r := core.LedgerRecord{SalePrice: d("100"), ResidencePayment: d("120")}
	assert.True(t, d("-20").Equal(r.Balance()))
}

func TestSumLedger(t *testing.T) {
	records := []core.LedgerRecord{
		{SalePrice: d("1000"), Fine: d("50"), ResidencePayment: d("400")},
		{SalePrice: d("2000"), FinePayment: d("50"), ILOEPayments: d("100")},
	}
	totals := core.SumLedger(records)
	assert.True(t, d("3050").Equal(totals.TotalCharges))
	assert.True(t, d("550").Equal(totals.TotalPaid))
	assert.True(t, d("2500").Equal(totals.OutstandingBalance))

	empty := core.SumLedger(nil)
	assert.True(t, empty.TotalCharges.IsZero())
	assert.True(t, empty.OutstandingBalance.IsZero())
}

func TestLedgerRows(t *testing.T) {
	rows := core.LedgerRows([]core.LedgerRecord{
		{ResidenceID: 7, SalePrice: d("900"), ResidencePayment: d("900"), CurrentStatus: "Completed"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].ResidenceID)
	assert.True(t, rows[0].Balance.IsZero())
	assert.Equal(t, core.BadgeSuccess, rows[0].Badge)
}

func TestLedgerStatusBadge(t *testing.T) {
	assert.Equal(t, core.BadgeSuccess, core.LedgerStatusBadge("COMPLETED"))
	assert.Equal(t, core.BadgeDanger, core.LedgerStatusBadge("Cancelled - refunded"))
	assert.Equal(t, core.BadgeWarning, core.LedgerStatusBadge("On Hold"))
	assert.Equal(t, core.BadgeInfo, core.LedgerStatusBadge("Medical"))
	assert.Equal(t, core.BadgeInfo, core.LedgerStatusBadge(""))
}
