package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"agent-portal/internal/core"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"

	"go.uber.org/zap"
)

// minPasswordLength counts characters, not bytes.
const minPasswordLength = 6

type appService struct {
	client *portal.Client
	logger *zap.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// client must not carry a token; each call attaches the caller's.
func NewAppService(client *portal.Client, logger *zap.Logger) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &appService{client: client, logger: logger}
}

func (s *appService) authed(token string) (*portal.Client, error) {
	if token == "" {
		return nil, session.ErrNotAuthenticated
	}
	return s.client.WithToken(token), nil
}

// Login exchanges credentials for a bearer token and the agent profile.
func (s *appService) Login(ctx context.Context, email, password string) (*portal.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("email", "Please enter both email and password")
	}
	return s.client.Login(ctx, email, password)
}

// Me returns the profile of the agent that owns token.
func (s *appService) Me(ctx context.Context, token string) (*core.Agent, error) {
	c, err := s.authed(token)
	if err != nil {
		return nil, err
	}
	return c.Me(ctx)
}

// ChangePassword validates the form and replaces the agent's password.
func (s *appService) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (*MessageResult, error) {
	switch {
	case req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "":
		return nil, invalid("", "Please fill in all fields")
	case utf8.RuneCountInString(req.NewPassword) < minPasswordLength:
		return nil, invalid("newPassword", "New password must be at least %d characters long", minPasswordLength)
	case req.NewPassword != req.ConfirmPassword:
		return nil, invalid("confirmPassword", "New passwords do not match")
	case req.CurrentPassword == req.NewPassword:
		return nil, invalid("newPassword", "New password must be different from current password")
	}

	c, err := s.authed(token)
	if err != nil {
		return nil, err
	}
	if _, err := c.ChangePassword(ctx, req.CurrentPassword, req.NewPassword); err != nil {
		return nil, err
	}
	return &MessageResult{Message: "Your password has been changed successfully."}, nil
}

// ForgotPassword asks the server to email a reset link.
func (s *appService) ForgotPassword(ctx context.Context, email string) (*MessageResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email", "Please enter your email address")
	}
	if _, err := s.client.ForgotPassword(ctx, email); err != nil {
		return nil, err
	}
	return &MessageResult{Message: "If the email exists, a password reset link has been sent to your email."}, nil
}

// ResetPassword validates the form and sets a new password from a reset link.
func (s *appService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResult, error) {
	switch {
	case req.Token == "" || req.Email == "":
		return nil, invalid("token", "Invalid reset link. Please request a new one.")
	case req.Password == "" || req.ConfirmPassword == "":
		return nil, invalid("password", "Please enter both password fields")
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		return nil, invalid("password", "Password must be at least %d characters long", minPasswordLength)
	case req.Password != req.ConfirmPassword:
		return nil, invalid("confirmPassword", "Passwords do not match")
	}

	_, err := s.client.ResetPassword(ctx, portal.ResetPasswordRequest{
		Token:    req.Token,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	return &MessageResult{Message: "Your password has been reset. You can now login with your new password."}, nil
}

// Dashboard lists residences with stats over the fetched set; the search term
// narrows the rows afterwards.
func (s *appService) Dashboard(ctx context.Context, token string, req DashboardRequest) (*DashboardResult, error) {
	c, err := s.authed(token)
	if err != nil {
		return nil, err
	}

	step := strings.TrimSpace(req.Step)
	filter, ok, err := core.StepFilter(step)
	if err != nil {
		return nil, invalid("step", "Unknown step %q", step)
	}

	q := portal.ResidenceQuery{Limit: portal.DefaultPageLimit}
	result := &DashboardResult{Search: req.Search}
	if ok {
		q.CompletedStep = &filter
		result.Step = step
		result.StepName = core.StepName(step)
		result.Filter = &filter
	}

	page, err := c.ListResidences(ctx, q)
	if err != nil {
		return nil, err
	}

	result.Stats = core.ComputeDashboardStats(page.Residences)
	result.Residences = core.SearchResidences(page.Residences, req.Search)
	result.Pagination = page.Pagination
	return result, nil
}

// ListCurrencies returns the currencies the ledger can be viewed in.
func (s *appService) ListCurrencies(ctx context.Context, token string) (*CurrenciesResult, error) {
	c, err := s.authed(token)
	if err != nil {
		return nil, err
	}
	currencies, err := c.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	return &CurrenciesResult{Currencies: currencies}, nil
}

// Ledger returns the payment statement for one currency.
func (s *appService) Ledger(ctx context.Context, token string, req LedgerRequest) (*LedgerResult, error) {
	c, err := s.authed(token)
	if err != nil {
		return nil, err
	}
	currencies, err := c.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCurrencies, err)
	}
	if len(currencies) == 0 {
		return nil, ErrNoCurrencies
	}

	result := &LedgerResult{
		Currencies: currencies,
		Selected:   currencies[0],
		Rows:       []core.LedgerRow{},
	}
	if req.CurrencyID != 0 {
		result.Selected = core.Currency{ID: req.CurrencyID}
		for _, cur := range currencies {
			if cur.ID == req.CurrencyID {
				result.Selected = cur
				break
			}
		}
	}
	result.CurrencyName = result.Selected.Name

	page, err := c.GetLedger(ctx, portal.LedgerQuery{CurrencyID: result.Selected.ID})
	if err != nil {
		s.logger.Debug("ledger fetch failed", zap.Int("currency_id", result.Selected.ID), zap.Error(err))
		return result, err
	}

	result.Rows = core.LedgerRows(page.Records)
	result.Totals = page.Totals
	result.Pagination = page.Pagination
	if page.Currency != "" {
		result.CurrencyName = page.Currency
	}
	return result, nil
}

// ResidenceDetails returns one residence with its balance and step timeline.
func (s *appService) ResidenceDetails(ctx context.Context, token string, residenceID int) (*ResidenceDetailsResult, error) {
	if residenceID <= 0 {
		return nil, invalid("id", "Invalid residence ID")
	}
	c, err := s.authed(token)
	if err != nil {
		return nil, err
	}
	d, err := c.GetResidence(ctx, residenceID)
	if err != nil {
		return nil, fmt.Errorf("residence %d: %w", residenceID, err)
	}
	return &ResidenceDetailsResult{
		Residence: d,
		Balance:   d.Balance(),
		Badge:     core.StepBadge(d.CompletedStep),
		Timeline:  core.Timeline(d),
	}, nil
}

// SendTestSMS sends one message through the SMS gateway.
func (s *appService) SendTestSMS(ctx context.Context, req SMSRequest) (*SMSResult, error) {
	if strings.TrimSpace(req.Recipient) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, invalid("", "Please fill in all fields")
	}

	res, err := s.client.SendSMS(ctx, req.Recipient, req.Message)
	if err != nil {
		s.logger.Warn("sms gateway unreachable", zap.Error(err))
		return &SMSResult{Message: "Network error. Please check your connection and try again."}, nil
	}
	if res.Success {
		return &SMSResult{Success: true, Message: "SMS sent successfully!", Details: res.Response}, nil
	}
	msg := res.Error
	if msg == "" {
		msg = "Failed to send SMS"
	}
	return &SMSResult{Message: msg, Details: res.Response}, nil
}
