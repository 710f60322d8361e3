package portal

import (
	"context"
	"net/http"

	"agent-portal/internal/core"
)

// LedgerQuery selects the ledger currency.
type LedgerQuery struct {
	CurrencyID int `url:"currencyID"`
	Limit      int `url:"limit,omitempty"`
}

// LedgerPage is the ledger for one currency as the server reports it.
type LedgerPage struct {
	Records    []core.LedgerRecord
	Totals     core.LedgerTotals
	Currency   string
	Pagination *core.Pagination
}

// ListCurrencies returns the currencies the ledger can be viewed in.
func (c *Client) ListCurrencies(ctx context.Context) ([]core.Currency, error) {
	env, err := c.call(ctx, epCurrencies, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}
	return currenciesPayload(env)
}

// GetLedger returns the ledger records and server totals for one currency.
func (c *Client) GetLedger(ctx context.Context, q LedgerQuery) (*LedgerPage, error) {
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	env, err := c.call(ctx, epLedger, http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	return ledgerPayload(env)
}
