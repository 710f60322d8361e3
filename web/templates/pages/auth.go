package pages

import (
	"context"

	"agent-portal/web/templates/layouts"

	"github.com/a-h/templ"
)

func emailField(m *markup, email string) {
	m.raw(`  <label for="email">Email</label>
  <input id="email" name="email" type="email" value="`)
	m.text(email)
	m.raw("\" autofocus>\n")
}

// Login renders the sign-in form, prefilled with email after a failed attempt.
func Login(d layouts.AppLayoutData, email string) templ.Component {
	return AuthLayout(d, component(func(_ context.Context, m *markup) {
		m.raw(`<form method="post" action="/login">
`)
		emailField(m, email)
		m.raw(`  <label for="password">Password</label>
  <input id="password" name="password" type="password">
  <button type="submit">Sign in</button>
</form>
<p><a href="/forgot-password">Forgot password?</a></p>
`)
	}))
}

// ForgotPassword renders the reset-link request form. Once sent, only the
// way back to login remains.
func ForgotPassword(d layouts.AppLayoutData, email string, sent bool) templ.Component {
	return AuthLayout(d, component(func(_ context.Context, m *markup) {
		if !sent {
			m.raw(`<form method="post" action="/forgot-password">
`)
			emailField(m, email)
			m.raw(`  <button type="submit">Send reset link</button>
</form>
`)
		}
		m.raw(`<p><a href="/login">Back to login</a></p>
`)
	}))
}

func ResetPassword(d layouts.AppLayoutData, token, email string) templ.Component {
	return AuthLayout(d, component(func(_ context.Context, m *markup) {
		m.raw(`<form method="post" action="/reset-password">
  <input type="hidden" name="token" value="`)
		m.text(token)
		m.raw(`">
  <input type="hidden" name="email" value="`)
		m.text(email)
		m.raw(`">
  <p class="muted">`)
		m.text(email)
		m.raw(`</p>
  <label for="password">New password</label>
  <input id="password" name="password" type="password" autofocus>
  <label for="confirmPassword">Confirm password</label>
  <input id="confirmPassword" name="confirmPassword" type="password">
  <button type="submit">Reset password</button>
</form>
`)
	}))
}
