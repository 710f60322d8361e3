package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"agent-portal/internal/adapters/display"
	"agent-portal/internal/adapters/repl"
	"agent-portal/internal/adapters/terminal"
	"agent-portal/internal/app"
	"agent-portal/internal/config"
	"agent-portal/internal/logging"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options wires the CLI. Zero fields are built from the environment in the
// root command's PersistentPreRunE.
type Options struct {
	Service app.ApplicationService
	Store   session.TokenStore
	Logger  *zap.Logger
	In      io.Reader
	Out     io.Writer
	Now     func() time.Time
}

type cmdEnv struct {
	opts    Options
	verbose bool
	svc     app.ApplicationService
	sess    *session.Session
	logger  *zap.Logger
	in      *terminal.Prompter
}

// NewRootCommand builds the portal command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rt := &cmdEnv{opts: opts, in: terminal.New(opts.In, opts.Out)}

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Agent portal: residences, payment statement and account tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init()
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Out)
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "log upstream requests to stderr")

	root.AddCommand(
		rt.loginCmd(),
		rt.logoutCmd(),
		rt.whoamiCmd(),
		rt.dashboardCmd(),
		rt.stepsCmd(),
		rt.currenciesCmd(),
		rt.ledgerCmd(),
		rt.residenceCmd(),
		rt.changePasswordCmd(),
		rt.forgotPasswordCmd(),
		rt.resetPasswordCmd(),
		rt.smsCmd(),
		rt.shellCmd(),
	)
	return root
}

// Execute runs the CLI against the process environment.
func Execute(ctx context.Context) error {
	root := NewRootCommand(Options{})
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
	}
	return err
}

func (rt *cmdEnv) init() error {
	rt.logger = rt.opts.Logger
	if rt.logger == nil {
		l, err := logging.NewConsole(rt.verbose)
		if err != nil {
			return err
		}
		rt.logger = l
	}

	store := rt.opts.Store
	rt.svc = rt.opts.Service
	if rt.svc == nil || store == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if store == nil {
			store = session.NewFileStore(cfg.SessionFile)
		}
		if rt.svc == nil {
			client := portal.New(cfg.APIURL,
				portal.WithSMSURL(cfg.SMSURL),
				portal.WithTimeout(cfg.HTTPTimeout),
				portal.WithLogger(rt.logger),
			)
			rt.svc = app.NewAppService(client, rt.logger)
		}
	}
	rt.sess = session.New(rt.svc, store, rt.logger)
	return nil
}

// restore loads the stored session before a data command. Failures that keep
// the token are only logged; the command itself will surface them.
func (rt *cmdEnv) restore(ctx context.Context) (string, error) {
	if err := rt.sess.Restore(ctx); err != nil {
		rt.logger.Debug("session restore", zap.Error(err))
	}
	return rt.sess.RequireToken()
}

// checkAuth drops the stored token when the server rejected it.
func (rt *cmdEnv) checkAuth(err error) error {
	if err != nil && rt.sess.Invalidate(err) {
		return fmt.Errorf("session expired, run 'portal login': %w", err)
	}
	return err
}

// describe turns err into the message a user should see.
func describe(err error) string {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return "not logged in, run 'portal login' first"
	}
	var apiErr *portal.APIError
	if errors.As(err, &apiErr) && !portal.IsAuthError(err) {
		return apiErr.Message
	}
	return err.Error()
}

func (rt *cmdEnv) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = rt.in.Line("Email: ")
			}
			if password == "" {
				password = rt.in.Secret("Password: ")
			}
			res, err := rt.sess.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.opts.Out, "Login successful!")
			display.Agent(rt.opts.Out, res.Agent)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func (rt *cmdEnv) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.sess.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(rt.opts.Out, "Logged out.")
			return nil
		},
	}
}

func (rt *cmdEnv) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			if !rt.sess.IsAuthenticated() {
				return errors.New("could not load your profile, try again later")
			}
			display.Agent(rt.opts.Out, rt.sess.Agent())
			return nil
		},
	}
}

func (rt *cmdEnv) dashboardCmd() *cobra.Command {
	var req app.DashboardRequest
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash", "residences"},
		Short:   "List residences with summary stats",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := rt.restore(cmd.Context())
			if err != nil {
				return err
			}
			result, err := rt.svc.Dashboard(cmd.Context(), token, req)
			if err != nil {
				return rt.checkAuth(err)
			}
			display.Dashboard(rt.opts.Out, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Step, "step", "s", "", "only residences at this step (1, 1a, 2, 3, 4, 4a, 5 ... 10)")
	cmd.Flags().StringVarP(&req.Search, "search", "q", "", "filter by passenger, passport or company")
	return cmd
}

func (rt *cmdEnv) stepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the processing steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			display.Steps(rt.opts.Out)
			return nil
		},
	}
}

func (rt *cmdEnv) currenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List ledger currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := rt.restore(cmd.Context())
			if err != nil {
				return err
			}
			result, err := rt.svc.ListCurrencies(cmd.Context(), token)
			if err != nil {
				return rt.checkAuth(err)
			}
			display.Currencies(rt.opts.Out, result)
			return nil
		},
	}
}

func (rt *cmdEnv) ledgerCmd() *cobra.Command {
	var req app.LedgerRequest
	cmd := &cobra.Command{
		Use:     "ledger",
		Aliases: []string{"statement"},
		Short:   "Show the payment statement for one currency",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := rt.restore(cmd.Context())
			if err != nil {
				return err
			}
			result, err := rt.svc.Ledger(cmd.Context(), token, req)
			if err != nil {
				return rt.checkAuth(err)
			}
			display.Ledger(rt.opts.Out, result, rt.opts.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&req.CurrencyID, "currency", "c", 0, "currency ID (default: first available)")
	return cmd
}

func (rt *cmdEnv) residenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "residence <id>",
		Short: "Show one residence and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int
			if _, err := fmt.Sscan(args[0], &id); err != nil {
				return fmt.Errorf("invalid residence ID %q", args[0])
			}
			token, err := rt.restore(cmd.Context())
			if err != nil {
				return err
			}
			result, err := rt.svc.ResidenceDetails(cmd.Context(), token, id)
			if err != nil {
				return rt.checkAuth(err)
			}
			display.Residence(rt.opts.Out, result)
			return nil
		},
	}
}

func (rt *cmdEnv) changePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := rt.restore(cmd.Context())
			if err != nil {
				return err
			}
			req := app.ChangePasswordRequest{
				CurrentPassword: rt.in.Secret("Current password: "),
				NewPassword:     rt.in.Secret("New password: "),
				ConfirmPassword: rt.in.Secret("Confirm new password: "),
			}
			result, err := rt.svc.ChangePassword(cmd.Context(), token, req)
			if err != nil {
				return rt.checkAuth(err)
			}
			fmt.Fprintln(rt.opts.Out, result.Message)
			return nil
		},
	}
}

func (rt *cmdEnv) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rt.svc.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.opts.Out, result.Message)
			return nil
		},
	}
}

func (rt *cmdEnv) resetPasswordCmd() *cobra.Command {
	var req app.ResetPasswordRequest
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using the token from a reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Password = rt.in.Secret("New password: ")
			req.ConfirmPassword = rt.in.Secret("Confirm password: ")
			result, err := rt.svc.ResetPassword(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.opts.Out, result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Token, "token", "", "reset token from the email link")
	cmd.Flags().StringVar(&req.Email, "email", "", "email from the reset link")
	return cmd
}

func (rt *cmdEnv) smsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sms <phone-number> <message>",
		Short: "Send a test SMS through the gateway",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rt.svc.SendTestSMS(cmd.Context(), app.SMSRequest{
				Recipient: args[0],
				Message:   strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			display.SMS(rt.opts.Out, result)
			if !result.Success {
				return errors.New("SMS was not sent")
			}
			return nil
		},
	}
}

func (rt *cmdEnv) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = rt.restore(cmd.Context())
			repl.Run(cmd.Context(), rt.svc, rt.sess, rt.in, rt.opts.Out)
			return nil
		},
	}
}
