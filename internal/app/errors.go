package app

import (
	"errors"
	"fmt"
)

// ErrNoCurrencies is returned when the server lists no ledger currencies.
var ErrNoCurrencies = errors.New("No currencies available. Please contact administrator.")

// ErrLoadCurrencies wraps a failed currency list fetch behind the ledger.
var ErrLoadCurrencies = errors.New("Failed to load currencies")

// ValidationError is a form that failed its client-side checks. The request
// never reached the server.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
