package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"agent-portal/internal/app"
	"agent-portal/internal/core"
	"agent-portal/internal/portal"
	"agent-portal/web/templates/layouts"
	"agent-portal/web/templates/pages"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Query flags that /login turns into a flash alert after a redirect.
const (
	flagExpired = "expired"
	flagReset   = "reset"
)

// ── Login page ────────────────────────────────────────────────────────────────

// loginPage handles GET /login and renders the sign-in page.
// Redirects to / if already authenticated.
func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.lookupSession(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	d := layouts.AppLayoutData{Title: "Agent Login"}
	switch {
	case r.URL.Query().Has(flagExpired):
		d = d.Flash("warning", sessionExpiredMsg)
	case r.URL.Query().Has(flagReset):
		d = d.Flash("success", "Your password has been reset. You can now login with your new password.")
	}
	h.page(w, r, http.StatusOK, "login", pages.Login(d, ""))
}

// loginFormSubmit handles POST /login: form-based login.
func (h *Handler) loginFormSubmit(w http.ResponseWriter, r *http.Request) {
	d := layouts.AppLayoutData{Title: "Agent Login"}
	if err := r.ParseForm(); err != nil {
		h.page(w, r, http.StatusBadRequest, "login", pages.Login(d.Flash("error", "Invalid form submission."), ""))
		return
	}
	email := r.FormValue("email")

	res, err := h.svc.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		d = d.Flash("error", displayMessage(err, "Login failed. Please try again."))
		h.page(w, r, pageStatus(err), "login", pages.Login(d, email))
		return
	}

	if _, err := h.startSession(w, r, res); err != nil {
		h.logger.Error("start session", zap.Error(err))
		d = d.Flash("error", "Server error. Please try again.")
		h.page(w, r, http.StatusInternalServerError, "login", pages.Login(d, email))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logoutPage handles POST /logout: deletes the session and redirects to login.
func (h *Handler) logoutPage(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ── Password recovery ─────────────────────────────────────────────────────────

// forgotPasswordPage handles GET /forgot-password.
func (h *Handler) forgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	d := layouts.AppLayoutData{Title: "Forgot Password"}
	h.page(w, r, http.StatusOK, "forgot", pages.ForgotPassword(d, "", false))
}

// forgotPasswordSubmit handles POST /forgot-password.
func (h *Handler) forgotPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	d := layouts.AppLayoutData{Title: "Forgot Password"}
	email := r.FormValue("email")

	res, err := h.svc.ForgotPassword(r.Context(), email)
	if err != nil {
		d = d.Flash("error", displayMessage(err, "Failed to send reset email"))
		h.page(w, r, pageStatus(err), "forgot", pages.ForgotPassword(d, email, false))
		return
	}
	h.page(w, r, http.StatusOK, "forgot", pages.ForgotPassword(d.Flash("success", res.Message), email, true))
}

// resetPasswordPage handles GET /reset-password?token=&email=, the link sent
// by email. A link missing either value sends the agent back to request a new one.
func (h *Handler) resetPasswordPage(w http.ResponseWriter, r *http.Request) {
	resetToken, email := r.URL.Query().Get("token"), r.URL.Query().Get("email")
	if resetToken == "" || email == "" {
		h.invalidResetLink(w, r)
		return
	}
	d := layouts.AppLayoutData{Title: "Reset Password"}
	h.page(w, r, http.StatusOK, "reset", pages.ResetPassword(d, resetToken, email))
}

// resetPasswordSubmit handles POST /reset-password.
func (h *Handler) resetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	resetToken, email := r.FormValue("token"), r.FormValue("email")
	_, err := h.svc.ResetPassword(r.Context(), app.ResetPasswordRequest{
		Token:           resetToken,
		Email:           email,
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	})
	if err != nil {
		var ve *app.ValidationError
		if errors.As(err, &ve) && ve.Field == "token" {
			h.invalidResetLink(w, r)
			return
		}
		d := layouts.AppLayoutData{Title: "Reset Password"}.Flash("error", displayMessage(err, "Failed to reset password"))
		h.page(w, r, pageStatus(err), "reset", pages.ResetPassword(d, resetToken, email))
		return
	}
	http.Redirect(w, r, "/login?"+flagReset+"=1", http.StatusSeeOther)
}

func (h *Handler) invalidResetLink(w http.ResponseWriter, r *http.Request) {
	d := layouts.AppLayoutData{Title: "Forgot Password"}.Flash("error", "Invalid reset link. Please request a new one.")
	h.page(w, r, http.StatusBadRequest, "forgot", pages.ForgotPassword(d, "", false))
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

// dashboardPage handles GET /?step=&q=.
func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := h.buildAppLayoutData(r, "Dashboard", "dashboard")

	res, err := h.svc.Dashboard(r.Context(), token(r), app.DashboardRequest{Step: q.Get("step"), Search: q.Get("q")})
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		res = &app.DashboardResult{Search: q.Get("q")}
		d = d.Flash("error", displayMessage(err, "Failed to load residences"))
		h.page(w, r, pageStatus(err), "dashboard", pages.Dashboard(d, res))
		return
	}
	d.ActiveStep = res.Step
	if res.StepName != "" {
		d.Title = res.StepName
	}
	h.page(w, r, http.StatusOK, "dashboard", pages.Dashboard(d, res))
}

// ── Residence details ─────────────────────────────────────────────────────────

// residencePage handles GET /residence/{id}.
func (h *Handler) residencePage(w http.ResponseWriter, r *http.Request) {
	d := h.buildAppLayoutData(r, "Residence Details", "dashboard")
	empty := &app.ResidenceDetailsResult{}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.page(w, r, http.StatusBadRequest, "residence", pages.ResidenceDetails(d.Flash("error", "Invalid residence ID"), empty))
		return
	}

	res, err := h.svc.ResidenceDetails(r.Context(), token(r), id)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		d = d.Flash("error", displayMessage(err, "Failed to load residence details"))
		h.page(w, r, pageStatus(err), "residence", pages.ResidenceDetails(d, empty))
		return
	}
	d.Title = res.Residence.PassengerName
	h.page(w, r, http.StatusOK, "residence", pages.ResidenceDetails(d, res))
}

// ── Ledger ────────────────────────────────────────────────────────────────────

// ledgerPage handles GET /ledger?currency=. A failed ledger fetch still
// renders the currency selector with empty rows.
func (h *Handler) ledgerPage(w http.ResponseWriter, r *http.Request) {
	d := h.buildAppLayoutData(r, "Ledger", "ledger")

	currencyID, _ := strconv.Atoi(r.URL.Query().Get("currency"))
	res, err := h.svc.Ledger(r.Context(), token(r), app.LedgerRequest{CurrencyID: currencyID})
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		kind := "error"
		if errors.Is(err, app.ErrNoCurrencies) {
			kind = "info"
		}
		if res == nil {
			res = &app.LedgerResult{}
		}
		d = d.Flash(kind, displayMessage(err, "Failed to load ledger data"))
	}
	h.page(w, r, http.StatusOK, "ledger", pages.Ledger(d, res, h.now()))
}

// ── Account pages ─────────────────────────────────────────────────────────────

// changePasswordPage handles GET /change-password.
func (h *Handler) changePasswordPage(w http.ResponseWriter, r *http.Request) {
	d := h.buildAppLayoutData(r, "Change Password", "change-password")
	h.page(w, r, http.StatusOK, "change_password", pages.ChangePassword(d))
}

// changePasswordSubmit handles POST /change-password. The form is never
// echoed back.
func (h *Handler) changePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	d := h.buildAppLayoutData(r, "Change Password", "change-password")

	res, err := h.svc.ChangePassword(r.Context(), token(r), app.ChangePasswordRequest{
		CurrentPassword: r.FormValue("currentPassword"),
		NewPassword:     r.FormValue("newPassword"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	})
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		d = d.Flash("error", displayMessage(err, "Failed to change password"))
		h.page(w, r, pageStatus(err), "change_password", pages.ChangePassword(d))
		return
	}
	h.page(w, r, http.StatusOK, "change_password", pages.ChangePassword(d.Flash("success", res.Message)))
}

// testSMSPage handles GET /test-sms.
func (h *Handler) testSMSPage(w http.ResponseWriter, r *http.Request) {
	d := h.buildAppLayoutData(r, "Test SMS", "test-sms")
	h.page(w, r, http.StatusOK, "test_sms", pages.TestSMS(d, pages.SMSForm{}))
}

// testSMSSubmit handles POST /test-sms. The form is cleared after a
// successful send and kept for another attempt otherwise.
func (h *Handler) testSMSSubmit(w http.ResponseWriter, r *http.Request) {
	d := h.buildAppLayoutData(r, "Test SMS", "test-sms")
	form := pages.SMSForm{Recipient: r.FormValue("recipient"), Message: r.FormValue("message")}

	res, err := h.svc.SendTestSMS(r.Context(), app.SMSRequest{Recipient: form.Recipient, Message: form.Message})
	if err != nil {
		d = d.Flash("error", displayMessage(err, "Failed to send SMS"))
		h.page(w, r, pageStatus(err), "test_sms", pages.TestSMS(d, form))
		return
	}
	if len(res.Details) > 0 {
		form.Details = string(res.Details)
	}
	if res.Success {
		form.Recipient, form.Message = "", ""
		d = d.Flash("success", res.Message)
	} else {
		d = d.Flash("error", res.Message)
	}
	h.page(w, r, http.StatusOK, "test_sms", pages.TestSMS(d, form))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// buildAppLayoutData constructs AppLayoutData from the session record, so
// rendering the shell never calls the upstream API.
func (h *Handler) buildAppLayoutData(r *http.Request, title, activeNav string) layouts.AppLayoutData {
	d := layouts.AppLayoutData{
		Title:       title,
		CompanyName: "Agent Portal",
		ActiveNav:   activeNav,
		Steps:       core.Steps,
	}
	if rec := recordFromContext(r.Context()); rec != nil {
		if rec.Agent.Company != "" {
			d.CompanyName = rec.Agent.Company
		}
		d.AgentEmail = rec.Agent.Email
	}
	return d
}

// expired ends the session and redirects to /login when err is an upstream
// 401/403. It reports whether it did.
func (h *Handler) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !portal.IsAuthError(err) {
		return false
	}
	h.endSession(w, r)
	http.Redirect(w, r, "/login?"+flagExpired+"=1", http.StatusSeeOther)
	return true
}

// page renders c into a buffer first so a failed render never leaves a
// half-written response behind.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, name string, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// pageStatus is the HTTP status a page answers with when err is shown as a flash.
func pageStatus(err error) int {
	var apiErr *portal.APIError
	switch {
	case app.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.Unsuccessful():
		return http.StatusOK
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case portal.IsAuthError(err):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
