package layouts

import "agent-portal/internal/core"

// AppLayoutData is passed to the page shell.
type AppLayoutData struct {
	Title       string
	CompanyName string
	AgentEmail  string
	ActiveNav   string // "dashboard", "ledger", "change-password", "test-sms"
	ActiveStep  string // sidebar step id on the dashboard, empty for "All"
	Steps       []core.Step
	FlashMsg    string
	FlashKind   string // "success", "error", "warning", "info"
}

// Flash returns a copy of d carrying an alert.
func (d AppLayoutData) Flash(kind, msg string) AppLayoutData {
	d.FlashKind = kind
	d.FlashMsg = msg
	return d
}
