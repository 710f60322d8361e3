package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TotalCharges sums the six charge categories of the record.
func (l LedgerRecord) TotalCharges() decimal.Decimal {
	return decimal.Sum(l.SalePrice,
		l.Fine,
		l.CancellationCharges,
		l.TawjeehCharges,
		l.ILOECharges,
		l.CustomCharges,
	)
}

// TotalPaid sums the four payment categories of the record.
func (l LedgerRecord) TotalPaid() decimal.Decimal {
	return decimal.Sum(l.ResidencePayment,
		l.FinePayment,
		l.TawjeehPayments,
		l.ILOEPayments,
	)
}

// Balance is what remains outstanding on the record. Overpayment is negative.
func (l LedgerRecord) Balance() decimal.Decimal {
	return l.TotalCharges().Sub(l.TotalPaid())
}

// LedgerRow is a record with its recomputed per-row totals.
type LedgerRow struct {
	LedgerRecord
	Charges decimal.Decimal `json:"total_charges"`
	Paid    decimal.Decimal `json:"total_paid"`
	Balance decimal.Decimal `json:"balance"`
	Badge   Badge           `json:"badge"`
}

// LedgerRows computes the per-row totals shown in the ledger table.
func LedgerRows(records []LedgerRecord) []LedgerRow {
	rows := make([]LedgerRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, LedgerRow{
			LedgerRecord: r,
			Charges:      r.TotalCharges(),
			Paid:         r.TotalPaid(),
			Balance:      r.Balance(),
			Badge:        LedgerStatusBadge(r.CurrentStatus),
		})
	}
	return rows
}

// SumLedger recomputes the page totals from the records. The summary cards use
// the server's totals; this is the client-side cross-check.
func SumLedger(records []LedgerRecord) LedgerTotals {
	t := LedgerTotals{
		TotalCharges:       decimal.Zero,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}
	for _, r := range records {
		t.TotalCharges = t.TotalCharges.Add(r.TotalCharges())
		t.TotalPaid = t.TotalPaid.Add(r.TotalPaid())
	}
	t.OutstandingBalance = t.TotalCharges.Sub(t.TotalPaid)
	return t
}

// LedgerStatusBadge maps a ledger current_status label to its badge.
func LedgerStatusBadge(status string) Badge {
	s := strings.ToLower(status)
	switch {
	case s == "completed":
		return BadgeSuccess
	case strings.Contains(s, "cancelled"):
		return BadgeDanger
	case s == "on hold":
		return BadgeWarning
	default:
		return BadgeInfo
	}
}
