package pages

import (
	"context"

	"agent-portal/web/templates/layouts"

	"github.com/a-h/templ"
)

func head(m *markup, title string) {
	m.raw(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>`)
	m.text(title)
	m.raw(` · Agent Portal</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
`)
}

func flash(m *markup, d layouts.AppLayoutData) {
	if d.FlashMsg == "" {
		return
	}
	m.raw(`<div class="alert alert-`)
	m.text(d.FlashKind)
	m.raw(`" role="alert">`)
	m.text(d.FlashMsg)
	m.raw("</div>\n")
}

// AuthLayout is the centred card used by the pages reachable without a session.
func AuthLayout(d layouts.AppLayoutData, content templ.Component) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		head(m, d.Title)
		m.raw(`<div class="auth">
  <h2>`)
		m.text(d.Title)
		m.raw("</h2>\n")
		flash(m, d)
		m.child(ctx, content)
		m.raw(`</div>
</body>
</html>`)
	})
}

// AppLayout is the signed-in shell: step sidebar, topbar and content area.
func AppLayout(d layouts.AppLayoutData, content templ.Component) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		head(m, d.Title)
		m.raw(`<div class="shell">
  <nav class="sidebar">
    <a href="/"`)
		m.class("active", d.ActiveNav == "dashboard" && d.ActiveStep == "")
		m.raw(">Dashboard</a>\n    <h6>Processing steps</h6>\n")
		for _, s := range d.Steps {
			m.raw(`    <a href="/?step=`)
			m.text(s.ID)
			m.raw(`"`)
			m.class("active", d.ActiveStep == s.ID)
			m.raw(">")
			m.text(s.Name)
			m.raw("</a>\n")
		}
		m.raw("    <h6>Account</h6>\n")
		navLink(m, d, "/ledger", "ledger", "Payment Statement")
		navLink(m, d, "/change-password", "change-password", "Change password")
		navLink(m, d, "/test-sms", "test-sms", "Test SMS")
		m.raw(`  </nav>
  <div class="main">
    <header class="topbar">
      <strong>`)
		m.text(d.CompanyName)
		m.raw(`</strong>
      <span><span class="muted">`)
		m.text(d.AgentEmail)
		m.raw(`</span>
        <form method="post" action="/logout"><button type="submit">Logout</button></form></span>
    </header>
    <main class="content">
`)
		flash(m, d)
		m.child(ctx, content)
		m.raw(`    </main>
  </div>
</div>
</body>
</html>`)
	})
}

func navLink(m *markup, d layouts.AppLayoutData, href, nav, label string) {
	m.raw(`    <a href="`, href, `"`)
	m.class("active", d.ActiveNav == nav)
	m.raw(">", label, "</a>\n")
}
