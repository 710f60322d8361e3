package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"agent-portal/internal/adapters/display"
	"agent-portal/internal/adapters/terminal"
	"agent-portal/internal/app"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"
)

var errExit = errors.New("exit")

// Run starts the interactive REPL loop.
// Slash commands are dispatched deterministically; any other input is used
// as a dashboard search term.
func Run(ctx context.Context, svc app.ApplicationService, sess *session.Session, in *terminal.Prompter, out io.Writer) {
	r := &shell{ctx: ctx, svc: svc, sess: sess, in: in, out: out}

	fmt.Fprintln(out, "Agent Portal")
	if a := sess.Agent(); a != nil {
		fmt.Fprintf(out, "Signed in as %s (%s)\n", a.Email, a.Company)
	} else {
		fmt.Fprintln(out, "Not signed in. Use /login to start.")
	}
	fmt.Fprintln(out, "Type a name, passport or company to search, or /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		input, err := in.ReadLine("\n> ")
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			err = r.dispatch(input)
		} else {
			err = r.dashboard(app.DashboardRequest{Search: input})
		}
		if errors.Is(err, errExit) {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
		if err != nil {
			r.report(err)
		}
	}
}

type shell struct {
	ctx  context.Context
	svc  app.ApplicationService
	sess *session.Session
	in   *terminal.Prompter
	out  io.Writer
}

func (r *shell) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "login":
		return r.login()

	case "logout":
		if err := r.sess.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "Logged out.")

	case "whoami", "me":
		display.Agent(r.out, r.sess.Agent())

	case "dash", "dashboard", "d":
		req := app.DashboardRequest{}
		if len(args) > 0 {
			req.Step = args[0]
		}
		if len(args) > 1 {
			req.Search = strings.Join(args[1:], " ")
		}
		return r.dashboard(req)

	case "steps":
		display.Steps(r.out)

	case "currencies":
		token, err := r.sess.RequireToken()
		if err != nil {
			return err
		}
		result, err := r.svc.ListCurrencies(r.ctx, token)
		if err != nil {
			return err
		}
		display.Currencies(r.out, result)

	case "ledger", "l":
		req := app.LedgerRequest{}
		if len(args) > 0 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintln(r.out, "Usage: /ledger [currency-id]")
				return nil
			}
			req.CurrencyID = id
		}
		token, err := r.sess.RequireToken()
		if err != nil {
			return err
		}
		result, err := r.svc.Ledger(r.ctx, token, req)
		if result != nil {
			display.Ledger(r.out, result, time.Now())
		}
		return err

	case "res", "residence", "r":
		if len(args) < 1 {
			fmt.Fprintln(r.out, "Usage: /res <residence-id>")
			return nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(r.out, "Invalid residence ID: %s\n", args[0])
			return nil
		}
		token, err := r.sess.RequireToken()
		if err != nil {
			return err
		}
		result, err := r.svc.ResidenceDetails(r.ctx, token, id)
		if err != nil {
			return err
		}
		display.Residence(r.out, result)

	case "passwd", "change-password":
		return r.changePassword()

	case "sms":
		if len(args) < 2 {
			fmt.Fprintln(r.out, "Usage: /sms <phone-number> <message>")
			return nil
		}
		result, err := r.svc.SendTestSMS(r.ctx, app.SMSRequest{Recipient: args[0], Message: strings.Join(args[1:], " ")})
		if err != nil {
			return err
		}
		display.SMS(r.out, result)

	case "help", "h":
		printHelp(r.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(r.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (r *shell) dashboard(req app.DashboardRequest) error {
	token, err := r.sess.RequireToken()
	if err != nil {
		return err
	}
	result, err := r.svc.Dashboard(r.ctx, token, req)
	if err != nil {
		return err
	}
	display.Dashboard(r.out, result)
	return nil
}

// report prints err and signs the session out when the server rejected the token.
func (r *shell) report(err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		fmt.Fprintln(r.out, "Not signed in. Use /login first.")
	case r.sess.Invalidate(err):
		fmt.Fprintln(r.out, "Your session has expired. Use /login to sign in again.")
	default:
		fmt.Fprintf(r.out, "Error: %s\n", portal.Message(err, "Request failed"))
	}
}
