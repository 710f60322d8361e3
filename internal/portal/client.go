// Package portal is the client for the agent REST API.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://rest.sntrips.com/api"
	DefaultSMSURL  = "https://rest.sntrips.com/api/send_sms.php"

	maxResponseBytes = 8 << 20
)

// endpoint names a remote script together with the message shown when it
// fails without saying why.
type endpoint struct {
	path     string
	fallback string
}

var (
	epLogin          = endpoint{"agent/login.php", "Login failed"}
	epMe             = endpoint{"agent/me.php", "Failed to load agent profile"}
	epChangePassword = endpoint{"agent/change-password.php", "Failed to change password"}
	epForgotPassword = endpoint{"agent/forgot-password.php", "Failed to send reset email"}
	epResetPassword  = endpoint{"agent/reset-password.php", "Failed to reset password"}
	epResidences     = endpoint{"agent/residences.php", "Failed to load residences"}
	epResidence      = endpoint{"agent/residence-details.php", "Failed to load residence details"}
	epLedger         = endpoint{"agent/residence-ledger.php", "Failed to load ledger"}
	epCurrencies     = endpoint{"residence/get-currencies.php", "Failed to load currencies"}
)

// Client calls the remote API. A Client without a token can only log in and
// use the password-reset endpoints; WithToken returns an authenticated copy.
type Client struct {
	baseURL string
	smsURL  string
	http    *http.Client
	token   string
	logger  *zap.Logger
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request, response body included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithSMSURL sets the SMS gateway script URL.
func WithSMSURL(u string) Option {
	return func(c *Client) { c.smsURL = u }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records every upstream call in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		smsURL:  DefaultSMSURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that sends token as its bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token the client sends, if any.
func (c *Client) Token() string {
	return c.token
}

// call sends one request and returns the decoded envelope of a successful
// response. Non-2xx statuses and success=false bodies become *APIError.
func (c *Client) call(ctx context.Context, ep endpoint, method string, params, body any) (*envelope, error) {
	u := c.baseURL + "/" + ep.path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return nil, fmt.Errorf("%s: encode query: %w", ep.path, err)
		}
		if enc := v.Encode(); enc != "" {
			u += "?" + enc
		}
	}
	return c.send(ctx, ep, method, u, body)
}

func (c *Client) send(ctx context.Context, ep endpoint, method, u string, body any) (*envelope, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", ep.path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ep.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(ep.path, 0, time.Since(start))
		c.logger.Debug("upstream request failed", zap.String("endpoint", ep.path), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ep.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.observe(ep.path, resp.StatusCode, elapsed)
	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("endpoint", ep.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", ep.path, err)
	}

	env, parseErr := parseEnvelope(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if parseErr == nil {
			msg = env.message()
		}
		if msg == "" {
			msg = ep.fallback
		}
		return nil, &APIError{Op: ep.path, StatusCode: resp.StatusCode, Message: msg}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%s: %w", ep.path, parseErr)
	}
	if !env.success() {
		msg := env.message()
		if msg == "" {
			msg = ep.fallback
		}
		return nil, &APIError{Op: ep.path, StatusCode: resp.StatusCode, Message: msg}
	}
	return env, nil
}
