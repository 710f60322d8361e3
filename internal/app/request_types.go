package app

// ChangePasswordRequest is the change-password form.
type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ResetPasswordRequest is the reset-password form plus the values carried by
// the reset link.
type ResetPasswordRequest struct {
	Token           string
	Email           string
	Password        string
	ConfirmPassword string
}

// DashboardRequest selects what the dashboard shows.
type DashboardRequest struct {
	Step   string // sidebar step id such as "4a"; empty means all
	Search string
}

// LedgerRequest selects the ledger currency; zero means the first one.
type LedgerRequest struct {
	CurrencyID int
}

// SMSRequest is the test-SMS form.
type SMSRequest struct {
	Recipient string
	Message   string
}
