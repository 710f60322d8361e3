package app

import (
	"context"

	"agent-portal/internal/core"
	"agent-portal/internal/portal"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from the remote API. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Every call that reads agent data takes the bearer token explicitly; holding
// the token is the caller's business (see package session).
type ApplicationService interface {
	// Login exchanges credentials for a bearer token and the agent profile.
	Login(ctx context.Context, email, password string) (*portal.LoginResult, error)

	// Me returns the profile of the agent that owns token.
	Me(ctx context.Context, token string) (*core.Agent, error)

	// ChangePassword validates the form and replaces the agent's password.
	ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (*MessageResult, error)

	// ForgotPassword asks the server to email a reset link.
	ForgotPassword(ctx context.Context, email string) (*MessageResult, error)

	// ResetPassword validates the form and sets a new password from a reset link.
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResult, error)

	// Dashboard lists residences, optionally filtered by a sidebar step and a
	// search term, with aggregate stats over the fetched set.
	Dashboard(ctx context.Context, token string, req DashboardRequest) (*DashboardResult, error)

	// ListCurrencies returns the currencies the ledger can be viewed in.
	ListCurrencies(ctx context.Context, token string) (*CurrenciesResult, error)

	// Ledger returns the payment statement for one currency. A zero CurrencyID
	// selects the first currency. When the ledger fetch fails the result is
	// still returned, with empty rows and zero totals, alongside the error.
	Ledger(ctx context.Context, token string, req LedgerRequest) (*LedgerResult, error)

	// ResidenceDetails returns one residence with its balance and step timeline.
	ResidenceDetails(ctx context.Context, token string, residenceID int) (*ResidenceDetailsResult, error)

	// SendTestSMS sends one message through the SMS gateway. Gateway failures
	// are reported in the result, not as an error.
	SendTestSMS(ctx context.Context, req SMSRequest) (*SMSResult, error)
}
