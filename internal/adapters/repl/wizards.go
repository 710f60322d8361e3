package repl

import (
	"fmt"
	"strings"

	"agent-portal/internal/app"
)

// login asks for credentials and signs the session in.
func (r *shell) login() error {
	email := r.in.Line("  Email: ")
	password := r.in.Secret("  Password: ")
	res, err := r.sess.Login(r.ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Login successful!")
	if res.Agent != nil {
		fmt.Fprintf(r.out, "Welcome, %s (%s)\n", res.Agent.Company, res.Agent.Email)
	}
	return nil
}

// changePassword runs the change-password form. Typing 'cancel' at any
// prompt aborts it.
func (r *shell) changePassword() error {
	token, err := r.sess.RequireToken()
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Change password. Type 'cancel' to abort.")

	var req app.ChangePasswordRequest
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"  Current password: ", &req.CurrentPassword},
		{"  New password: ", &req.NewPassword},
		{"  Confirm new password: ", &req.ConfirmPassword},
	} {
		*f.dst = r.in.Secret(f.label)
		if strings.EqualFold(*f.dst, "cancel") {
			fmt.Fprintln(r.out, "Cancelled.")
			return nil
		}
	}

	result, err := r.svc.ChangePassword(r.ctx, token, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, result.Message)
	return nil
}
