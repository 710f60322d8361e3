package app

import (
	"encoding/json"

	"agent-portal/internal/core"

	"github.com/shopspring/decimal"
)

// MessageResult carries the server's confirmation text.
type MessageResult struct {
	Message string `json:"message"`
}

// DashboardResult is returned by Dashboard.
type DashboardResult struct {
	Residences []core.Residence    `json:"residences"` // after search
	Stats      core.DashboardStats `json:"stats"`
	Step       string              `json:"step,omitempty"` // sidebar step id, empty when unfiltered
	StepName   string              `json:"step_name,omitempty"`
	Filter     *int                `json:"completed_step,omitempty"` // completedStep value sent to the server
	Search     string              `json:"search,omitempty"`
	Pagination core.Pagination     `json:"pagination"`
}

// CurrenciesResult is returned by ListCurrencies.
type CurrenciesResult struct {
	Currencies []core.Currency `json:"currencies"`
}

// LedgerResult is returned by Ledger.
type LedgerResult struct {
	Currencies   []core.Currency   `json:"currencies"`
	Selected     core.Currency     `json:"selected"`
	CurrencyName string            `json:"currency"`
	Rows         []core.LedgerRow  `json:"records"`
	Totals       core.LedgerTotals `json:"totals"`
	Pagination   *core.Pagination  `json:"pagination,omitempty"`
}

// ResidenceDetailsResult is returned by ResidenceDetails.
type ResidenceDetailsResult struct {
	Residence *core.ResidenceDetail `json:"residence"`
	Balance   decimal.Decimal       `json:"balance"`
	Badge     core.Badge            `json:"badge"`
	Timeline  []core.TimelineEntry  `json:"timeline"`
}

// SMSResult is returned by SendTestSMS.
type SMSResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}
