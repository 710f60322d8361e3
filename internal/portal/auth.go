package portal

import (
	"context"
	"errors"
	"net/http"

	"agent-portal/internal/core"
)

// ErrNoToken is returned when a login succeeds without handing back a token.
var ErrNoToken = errors.New("Token not received from server")

// LoginResult is what a successful login yields.
type LoginResult struct {
	Token   string
	Agent   *core.Agent
	Message string
}

// Login exchanges credentials for a bearer token and the agent profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := c.call(ctx, epLogin, http.MethodPost, nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	token, agent, err := loginPayload(env)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}
	return &LoginResult{Token: token, Agent: agent, Message: env.message()}, nil
}

// Me fetches the profile of the agent that owns the client's token.
func (c *Client) Me(ctx context.Context) (*core.Agent, error) {
	env, err := c.call(ctx, epMe, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}
	return profilePayload(env)
}

// ChangePassword replaces the signed-in agent's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	env, err := c.call(ctx, epChangePassword, http.MethodPost, nil, map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	if err != nil {
		return "", err
	}
	return env.message(), nil
}

// ForgotPassword asks the server to email a reset link to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.call(ctx, epForgotPassword, http.MethodPost, nil, map[string]string{
		"email": email,
	})
	if err != nil {
		return "", err
	}
	return env.message(), nil
}

// ResetPasswordRequest carries the values from a reset link plus the new password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	env, err := c.call(ctx, epResetPassword, http.MethodPost, nil, req)
	if err != nil {
		return "", err
	}
	return env.message(), nil
}
