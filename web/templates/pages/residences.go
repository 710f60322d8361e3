package pages

import (
	"context"
	"strconv"

	"agent-portal/internal/app"
	"agent-portal/internal/core"
	"agent-portal/web/templates/layouts"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
)

func card(m *markup, label, value string) {
	m.raw(`  <div class="card"><div class="label">`, label, `</div><div class="value">`)
	m.text(value)
	m.raw("</div></div>\n")
}

func amountCell(m *markup, d decimal.Decimal) {
	m.raw(`      <td class="num">`)
	m.text(core.FormatAmount(d))
	m.raw("</td>\n")
}

func residenceLink(m *markup, id int, name, sub string) {
	m.raw(`      <td><a href="/residence/`)
	m.num(id)
	m.raw(`">`)
	m.text(name)
	m.raw(`</a><div class="muted">`)
	m.text(sub)
	m.raw("</div></td>\n")
}

func badge(m *markup, b core.Badge, label string) {
	m.raw(`<span class="badge badge-`)
	m.text(string(b))
	m.raw(`">`)
	m.text(label)
	m.raw("</span>")
}

func progress(completedStep int) string {
	return strconv.Itoa(completedStep) + "/10"
}

// Dashboard renders the stats cards, the search box and the residence table.
// res is never nil.
func Dashboard(d layouts.AppLayoutData, res *app.DashboardResult) templ.Component {
	return AppLayout(d, component(func(_ context.Context, m *markup) {
		heading := res.StepName
		if heading == "" {
			heading = "All residences"
		}
		m.raw("<h2>")
		m.text(heading)
		m.raw("</h2>\n<div class=\"cards\">\n")
		card(m, "Total", strconv.Itoa(res.Stats.Total))
		card(m, "Completed", strconv.Itoa(res.Stats.Completed))
		card(m, "In progress", strconv.Itoa(res.Stats.InProgress))
		card(m, "Total sale", core.FormatAmount(res.Stats.TotalSale))
		card(m, "Total paid", core.FormatAmount(res.Stats.TotalPaid))
		m.raw("</div>\n<form method=\"get\" action=\"/\">\n")
		if res.Step != "" {
			m.raw(`  <input type="hidden" name="step" value="`)
			m.text(res.Step)
			m.raw("\">\n")
		}
		m.raw(`  <input name="q" value="`)
		m.text(res.Search)
		m.raw(`" placeholder="Search passenger, passport or company">
</form>
<table>
  <thead><tr><th>Passenger</th><th>Passport</th><th>Company</th><th>Status</th><th>Step</th>
    <th class="num">Sale</th><th class="num">Paid</th><th class="num">Balance</th></tr></thead>
  <tbody>
`)
		for _, r := range res.Residences {
			m.raw("    <tr>\n")
			residenceLink(m, r.ResidenceID, r.PassengerName, r.NationalityName)
			m.raw("      <td>")
			m.text(r.PassportNumber)
			m.raw("</td>\n      <td>")
			m.text(r.CompanyName)
			m.raw("</td>\n      <td>")
			m.text(r.StatusName)
			m.raw("</td>\n      <td>")
			badge(m, core.StepBadge(r.CompletedStep), progress(r.CompletedStep))
			m.raw("</td>\n")
			amountCell(m, r.SalePrice)
			amountCell(m, r.TotalPaid)
			amountCell(m, r.Balance())
			m.raw("    </tr>\n")
		}
		if len(res.Residences) == 0 {
			m.raw("    <tr><td colspan=\"8\" class=\"muted\">No residences found</td></tr>\n")
		}
		m.raw("  </tbody>\n</table>\n")
	}))
}

func detailRow(m *markup, label, value string) {
	m.raw("    <tr><th>", label, "</th><td>")
	m.text(value)
	m.raw("</td></tr>\n")
}

// ResidenceDetails renders one case with its ten-stage timeline. A result
// without a residence renders an empty content area under the flash.
func ResidenceDetails(d layouts.AppLayoutData, res *app.ResidenceDetailsResult) templ.Component {
	return AppLayout(d, component(func(_ context.Context, m *markup) {
		r := res.Residence
		if r == nil {
			return
		}
		m.raw("<p><a href=\"/\">&larr; Back to dashboard</a></p>\n<h2>")
		m.text(r.PassengerName)
		m.raw(" ")
		badge(m, res.Badge, progress(r.CompletedStep))
		m.raw("</h2>\n<div class=\"cards\">\n")
		card(m, "Sale price", core.FormatAmount(r.SalePrice))
		card(m, "Total paid", core.FormatAmount(r.TotalPaid))
		card(m, "Balance", core.FormatAmount(res.Balance))
		card(m, "Total fine", core.FormatAmount(r.TotalFine))
		m.raw("</div>\n<table>\n  <tbody>\n")
		detailRow(m, "Passport", r.PassportNumber)
		detailRow(m, "Nationality", r.NationalityName)
		detailRow(m, "Company", r.CompanyName+" "+r.CompanyNumber)
		detailRow(m, "Position", r.PositionName)
		detailRow(m, "MB number", r.MBNumber)
		detailRow(m, "UID", r.UID)
		detailRow(m, "Emirates ID", r.EmiratesIDNumber)
		detailRow(m, "Labour card", r.LabourCardNumber)
		detailRow(m, "Status", r.StatusName)
		detailRow(m, "Created", core.FormatDate(r.Datetime))
		if r.Remarks != "" {
			detailRow(m, "Remarks", r.Remarks)
		}
		m.raw("  </tbody>\n</table>\n<h3>Progress</h3>\n<ol class=\"timeline\">\n")
		for _, e := range res.Timeline {
			m.raw("  <li")
			m.class("done", e.Done)
			m.class("current", !e.Done && e.Current)
			m.raw(">")
			m.text(e.Name)
			if e.CompletedOn != "" {
				m.raw(` <span class="muted">`)
				m.text(core.FormatDate(e.CompletedOn))
				m.raw("</span>")
			}
			m.raw("</li>\n")
		}
		m.raw("</ol>\n")
	}))
}
