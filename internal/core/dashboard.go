package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DashboardStats are the summary cards above the residence table.
type DashboardStats struct {
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	InProgress int             `json:"in_progress"`
	TotalSale  decimal.Decimal `json:"total_sale"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
}

// ComputeDashboardStats derives the summary cards from a fetched page of residences.
// A cancelled case that has not completed counts as neither completed nor in progress.
func ComputeDashboardStats(residences []Residence) DashboardStats {
	stats := DashboardStats{
		Total:     len(residences),
		TotalSale: decimal.Zero,
		TotalPaid: decimal.Zero,
	}
	for _, r := range residences {
		if r.IsCompleted() {
			stats.Completed++
		}
		if r.CompletedStep < FinalStep && r.Cancelled == 0 {
			stats.InProgress++
		}
		stats.TotalSale = stats.TotalSale.Add(r.SalePrice)
		stats.TotalPaid = stats.TotalPaid.Add(r.TotalPaid)
	}
	return stats
}

// SearchResidences keeps the residences whose passenger name, passport number
// or company name contains term, ignoring case. An empty term keeps everything.
func SearchResidences(residences []Residence, term string) []Residence {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return residences
	}
	out := make([]Residence, 0, len(residences))
	for _, r := range residences {
		if strings.Contains(strings.ToLower(r.PassengerName), term) ||
			strings.Contains(strings.ToLower(r.PassportNumber), term) ||
			strings.Contains(strings.ToLower(r.CompanyName), term) {
			out = append(out, r)
		}
	}
	return out
}
