package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"agent-portal/internal/app"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"

	"go.uber.org/zap"
)

const sessionExpiredMsg = "Your session has expired. Please log in again."

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp.RequestID = requestIDFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// displayMessage is the text shown to the agent for err. Server-supplied
// messages and form validation messages pass through; transport failures and
// anything else read as fallback.
func displayMessage(err error, fallback string) string {
	var ve *app.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, app.ErrNoCurrencies) {
		return app.ErrNoCurrencies.Error()
	}
	if errors.Is(err, app.ErrLoadCurrencies) {
		return app.ErrLoadCurrencies.Error()
	}
	var apiErr *portal.APIError
	if errors.As(err, &apiErr) {
		return portal.Message(err, fallback)
	}
	return fallback
}

// apiFailure maps a service error to a JSON error response. An upstream
// 401/403 ends the browser session before answering 401.
func (h *Handler) apiFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *app.ValidationError
	var apiErr *portal.APIError
	switch {
	case errors.As(err, &ve):
		writeErrorResponse(w, r, errorResponse{Error: ve.Message, Code: "VALIDATION_ERROR", Field: ve.Field}, http.StatusBadRequest)
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
	case portal.IsAuthError(err):
		h.endSession(w, r)
		writeError(w, r, sessionExpiredMsg, "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, app.ErrNoCurrencies):
		writeError(w, r, err.Error(), "NO_CURRENCIES", http.StatusNotFound)
	case errors.As(err, &apiErr) && apiErr.Unsuccessful():
		writeError(w, r, displayMessage(err, fallback), "UPSTREAM_REJECTED", http.StatusUnprocessableEntity)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		writeError(w, r, displayMessage(err, fallback), "NOT_FOUND", http.StatusNotFound)
	default:
		h.logger.Warn("upstream call failed",
			zap.String("request_id", requestIDFromContext(r.Context())), zap.Error(err))
		writeError(w, r, displayMessage(err, fallback), "UPSTREAM_ERROR", http.StatusBadGateway)
	}
}
