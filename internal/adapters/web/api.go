package web

import (
	"net/http"
	"strconv"

	"agent-portal/internal/app"

	"github.com/go-chi/chi/v5"
)

// token returns the upstream bearer token of the request's session record.
func token(r *http.Request) string {
	if rec := recordFromContext(r.Context()); rec != nil {
		return rec.Token
	}
	return ""
}

// apiChangePassword handles POST /api/auth/change-password.
func (h *Handler) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ChangePassword(r.Context(), token(r), app.ChangePasswordRequest{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.apiFailure(w, r, err, "Failed to change password")
		return
	}
	writeJSON(w, res)
}

// apiForgotPassword handles POST /api/auth/forgot-password.
func (h *Handler) apiForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.apiFailure(w, r, err, "Failed to send reset email")
		return
	}
	writeJSON(w, res)
}

// apiResetPassword handles POST /api/auth/reset-password.
func (h *Handler) apiResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token           string `json:"token"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ResetPassword(r.Context(), app.ResetPasswordRequest{
		Token:           req.Token,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.apiFailure(w, r, err, "Failed to reset password")
		return
	}
	writeJSON(w, res)
}

// apiListResidences handles GET /api/residences?step=&q=.
func (h *Handler) apiListResidences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Dashboard(r.Context(), token(r), app.DashboardRequest{
		Step:   q.Get("step"),
		Search: q.Get("q"),
	})
	if err != nil {
		h.apiFailure(w, r, err, "Failed to load residences")
		return
	}
	writeJSON(w, res)
}

// apiGetResidence handles GET /api/residences/{id}.
func (h *Handler) apiGetResidence(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "Invalid residence ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.ResidenceDetails(r.Context(), token(r), id)
	if err != nil {
		h.apiFailure(w, r, err, "Failed to load residence details")
		return
	}
	writeJSON(w, res)
}

// apiListCurrencies handles GET /api/currencies.
func (h *Handler) apiListCurrencies(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListCurrencies(r.Context(), token(r))
	if err != nil {
		h.apiFailure(w, r, err, "Failed to load currencies")
		return
	}
	writeJSON(w, res)
}

// apiLedger handles GET /api/ledger?currency=.
func (h *Handler) apiLedger(w http.ResponseWriter, r *http.Request) {
	var currencyID int
	if v := r.URL.Query().Get("currency"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			writeError(w, r, "Invalid currency", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		currencyID = id
	}
	res, err := h.svc.Ledger(r.Context(), token(r), app.LedgerRequest{CurrencyID: currencyID})
	if err != nil {
		h.apiFailure(w, r, err, "Failed to load ledger data")
		return
	}
	writeJSON(w, res)
}

// apiSendTestSMS handles POST /api/sms/test. Gateway failures are reported in
// the body with success=false, not as an HTTP error.
func (h *Handler) apiSendTestSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipient string `json:"recipient"`
		Message   string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SendTestSMS(r.Context(), app.SMSRequest{Recipient: req.Recipient, Message: req.Message})
	if err != nil {
		h.apiFailure(w, r, err, "Failed to send SMS")
		return
	}
	writeJSON(w, res)
}
