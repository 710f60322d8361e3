package pages

import (
	"context"
	"time"

	"agent-portal/internal/app"
	"agent-portal/internal/core"
	"agent-portal/web/templates/layouts"

	"github.com/a-h/templ"
)

// Ledger renders the per-currency payment statement. Due ages are measured
// against now.
func Ledger(d layouts.AppLayoutData, res *app.LedgerResult, now time.Time) templ.Component {
	return AppLayout(d, component(func(_ context.Context, m *markup) {
		m.raw("<h2>Ledger")
		if res.CurrencyName != "" {
			m.raw(" (")
			m.text(res.CurrencyName)
			m.raw(")")
		}
		m.raw(`</h2>
<form method="get" action="/ledger">
  <label for="currency">Currency</label>
  <select id="currency" name="currency" onchange="this.form.submit()">
`)
		for _, c := range res.Currencies {
			m.raw(`  <option value="`)
			m.num(c.ID)
			m.raw(`"`)
			if c.ID == res.Selected.ID {
				m.raw(" selected")
			}
			m.raw(">")
			m.text(c.Name)
			m.raw("</option>\n")
		}
		m.raw("  </select>\n</form>\n<div class=\"cards\">\n")
		card(m, "Total charges", core.FormatAmount(res.Totals.TotalCharges))
		card(m, "Total paid", core.FormatAmount(res.Totals.TotalPaid))
		card(m, "Outstanding", core.FormatAmount(res.Totals.OutstandingBalance))
		m.raw(`</div>
<table>
  <thead><tr><th>Passenger</th><th>Company</th><th>Date</th><th>Due</th><th>Status</th>
    <th class="num">Charges</th><th class="num">Paid</th><th class="num">Balance</th></tr></thead>
  <tbody>
`)
		for _, r := range res.Rows {
			m.raw("    <tr>\n")
			residenceLink(m, r.ResidenceID, r.MainPassenger, r.Nationality)
			m.raw("      <td>")
			m.text(r.CompanyName)
			m.raw("</td>\n      <td>")
			m.text(core.FormatDate(r.Date))
			m.raw("</td>\n      <td>")
			m.text(core.DueSince(r.Date, now))
			m.raw("</td>\n      <td>")
			badge(m, r.Badge, r.CurrentStatus)
			m.raw("</td>\n")
			amountCell(m, r.Charges)
			amountCell(m, r.Paid)
			amountCell(m, r.Balance)
			m.raw("    </tr>\n")
		}
		if len(res.Rows) == 0 {
			m.raw("    <tr><td colspan=\"8\" class=\"muted\">No ledger records found</td></tr>\n")
		}
		m.raw("  </tbody>\n</table>\n")
	}))
}

// ChangePassword renders the password form. It never echoes input back.
func ChangePassword(d layouts.AppLayoutData) templ.Component {
	return AppLayout(d, component(func(_ context.Context, m *markup) {
		m.raw(`<h2>Change password</h2>
<form method="post" action="/change-password" class="card">
  <label for="currentPassword">Current password</label>
  <input id="currentPassword" name="currentPassword" type="password">
  <label for="newPassword">New password</label>
  <input id="newPassword" name="newPassword" type="password">
  <label for="confirmPassword">Confirm new password</label>
  <input id="confirmPassword" name="confirmPassword" type="password">
  <button type="submit">Change password</button>
</form>
`)
	}))
}

// SMSForm is the state of the test SMS page between submissions.
type SMSForm struct {
	Recipient string
	Message   string
	Details   string // raw gateway response
}

func TestSMS(d layouts.AppLayoutData, form SMSForm) templ.Component {
	return AppLayout(d, component(func(_ context.Context, m *markup) {
		m.raw(`<h2>Test SMS</h2>
<form method="post" action="/test-sms" class="card">
  <label for="recipient">Recipient</label>
  <input id="recipient" name="recipient" value="`)
		m.text(form.Recipient)
		m.raw(`" placeholder="971501234567">
  <label for="message">Message</label>
  <textarea id="message" name="message" rows="4">`)
		m.text(form.Message)
		m.raw(`</textarea>
  <button type="submit">Send SMS</button>
</form>
`)
		if form.Details != "" {
			m.raw(`<pre class="card">`)
			m.text(form.Details)
			m.raw("</pre>\n")
		}
	}))
}
