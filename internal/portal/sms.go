package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const smsEndpoint = "send_sms.php"

// SMSResult is the gateway's verdict on a test message.
type SMSResult struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// SendSMS posts one message to the SMS gateway. It is sent once, without the
// bearer token; the gateway's body is decoded whatever the HTTP status.
func (c *Client) SendSMS(ctx context.Context, recipient, message string) (*SMSResult, error) {
	b, err := json.Marshal(map[string]string{
		"recipient": recipient,
		"message":   message,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", smsEndpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.smsURL, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", smsEndpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(smsEndpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s: %w", smsEndpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.observe(smsEndpoint, resp.StatusCode, time.Since(start))
	c.logger.Debug("sms gateway", zap.Int("status", resp.StatusCode))

	var out SMSResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", smsEndpoint, err)
	}
	return &out, nil
}
