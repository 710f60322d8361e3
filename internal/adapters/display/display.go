// Package display renders application results as plain-text tables for the
// CLI and REPL.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"agent-portal/internal/app"
	"agent-portal/internal/core"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/shopspring/decimal"
)

const rule = 72

func newTable(rightAlign ...int) *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = 32
	t.Wrap = true
	for _, col := range rightAlign {
		t.RightAlign(col)
	}
	return t
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

func amount(d decimal.Decimal) string {
	return core.FormatAmount(d)
}

// Agent prints the signed-in agent's profile.
func Agent(w io.Writer, a *core.Agent) {
	if a == nil {
		fmt.Fprintln(w, "Not logged in.")
		return
	}
	t := newTable()
	t.AddRow("Company:", a.Company)
	t.AddRow("Email:", a.Email)
	t.AddRow("Agent ID:", a.ID)
	t.AddRow("Customer ID:", a.CustomerID)
	fmt.Fprintln(w, t)
}

// Steps prints the sidebar step catalogue.
func Steps(w io.Writer) {
	t := newTable()
	t.AddRow("STEP", "NAME")
	for _, s := range core.Steps {
		t.AddRow(s.ID, s.Name)
	}
	fmt.Fprintln(w, t)
}

// Dashboard prints the stat cards followed by the residence list.
func Dashboard(w io.Writer, r *app.DashboardResult) {
	title := "YOUR CUSTOMERS' RESIDENCES"
	if r.Step != "" {
		title += fmt.Sprintf(" (Filtering: Step %s - %s)", r.Step, r.StepName)
	}
	heading(w, title)

	stats := newTable(1)
	stats.AddRow("Total Residences", humanize.Comma(int64(r.Stats.Total)))
	stats.AddRow("Completed", humanize.Comma(int64(r.Stats.Completed)))
	stats.AddRow("In Progress", humanize.Comma(int64(r.Stats.InProgress)))
	stats.AddRow("Total Sale", amount(r.Stats.TotalSale))
	stats.AddRow("Total Paid", amount(r.Stats.TotalPaid))
	fmt.Fprintln(w, stats)
	fmt.Fprintln(w, strings.Repeat("-", rule))

	if len(r.Residences) == 0 {
		if r.Search != "" {
			fmt.Fprintf(w, "  No residences match %q.\n", r.Search)
		} else {
			fmt.Fprintln(w, "  No residences found.")
		}
		return
	}

	t := newTable(5, 6, 7)
	t.AddRow("ID", "PASSENGER", "PASSPORT", "COMPANY", "STEP", "SALE", "PAID", "BALANCE")
	for _, res := range r.Residences {
		t.AddRow(res.ResidenceID, res.PassengerName, res.PassportNumber, res.CompanyName,
			stepLabel(res),
			amount(res.SalePrice), amount(res.TotalPaid), amount(res.Balance()))
	}
	fmt.Fprintln(w, t)
	if r.Search != "" {
		fmt.Fprintf(w, "\n  %d of %d residences match %q.\n", len(r.Residences), r.Stats.Total, r.Search)
	}
}

func stepLabel(r core.Residence) string {
	label := fmt.Sprintf("%d/%d", r.CompletedStep, core.FinalStep)
	if r.Cancelled != 0 {
		label += " cancelled"
	}
	return label
}

// Currencies prints the ledger currencies.
func Currencies(w io.Writer, r *app.CurrenciesResult) {
	if len(r.Currencies) == 0 {
		fmt.Fprintln(w, app.ErrNoCurrencies.Error())
		return
	}
	t := newTable()
	t.AddRow("ID", "CURRENCY")
	for _, c := range r.Currencies {
		t.AddRow(c.ID, c.Name)
	}
	fmt.Fprintln(w, t)
}

// Ledger prints the payment statement with its summary cards.
func Ledger(w io.Writer, r *app.LedgerResult, now time.Time) {
	heading(w, fmt.Sprintf("PAYMENT STATEMENT (%s)", r.CurrencyName))

	summary := newTable(1)
	summary.AddRow("Total Charges", amount(r.Totals.TotalCharges))
	summary.AddRow("Total Paid", amount(r.Totals.TotalPaid))
	summary.AddRow("Outstanding Balance", amount(r.Totals.OutstandingBalance))
	fmt.Fprintln(w, summary)
	fmt.Fprintln(w, strings.Repeat("-", rule))

	if len(r.Rows) == 0 {
		fmt.Fprintln(w, "  No records found for this currency.")
		return
	}

	t := newTable(4, 5, 6)
	t.AddRow("ID", "PASSENGER", "COMPANY", "STATUS", "CHARGES", "PAID", "BALANCE", "DUE SINCE")
	for _, row := range r.Rows {
		t.AddRow(row.ResidenceID, row.MainPassenger, row.CompanyName, row.CurrentStatus,
			amount(row.Charges), amount(row.Paid), amount(row.Balance),
			core.DueSince(row.Date, now))
	}
	fmt.Fprintln(w, t)
}

// Residence prints one residence with its timeline.
func Residence(w io.Writer, r *app.ResidenceDetailsResult) {
	d := r.Residence
	heading(w, fmt.Sprintf("RESIDENCE #%d  %s", d.ResidenceID, d.PassengerName))

	t := newTable()
	t.AddRow("Passport:", d.PassportNumber)
	t.AddRow("Nationality:", d.NationalityName)
	t.AddRow("Company:", d.CompanyName)
	t.AddRow("Position:", d.PositionName)
	t.AddRow("UID:", d.UID)
	t.AddRow("Emirates ID:", d.EmiratesIDNumber)
	t.AddRow("Labour Card:", d.LabourCardNumber)
	t.AddRow("Status:", fmt.Sprintf("%s (step %d of %d)", d.StatusName, d.CompletedStep, core.FinalStep))
	t.AddRow("Sale Price:", amount(d.SalePrice))
	t.AddRow("Total Paid:", amount(d.TotalPaid))
	t.AddRow("Balance:", amount(r.Balance))
	if !d.TotalFine.IsZero() {
		t.AddRow("Fines:", amount(d.TotalFine))
	}
	if d.Remarks != "" {
		t.AddRow("Remarks:", d.Remarks)
	}
	fmt.Fprintln(w, t)
	fmt.Fprintln(w, strings.Repeat("-", rule))

	tl := newTable()
	tl.AddRow("", "STEP", "COMPLETED")
	for _, e := range r.Timeline {
		mark := "[ ]"
		switch {
		case e.Done:
			mark = "[x]"
		case e.Current:
			mark = "[>]"
		}
		on := ""
		if e.Done && e.CompletedOn != "" {
			on = core.FormatDate(e.CompletedOn)
		}
		tl.AddRow(mark, fmt.Sprintf("%d. %s", e.Number, e.Name), on)
	}
	fmt.Fprintln(w, tl)
}

// SMS prints the gateway's verdict and any provider payload.
func SMS(w io.Writer, r *app.SMSResult) {
	fmt.Fprintln(w, r.Message)
	if len(r.Details) == 0 || string(r.Details) == "null" {
		return
	}
	var pretty any
	if err := json.Unmarshal(r.Details, &pretty); err != nil {
		fmt.Fprintln(w, string(r.Details))
		return
	}
	b, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Fprintln(w, string(b))
}
