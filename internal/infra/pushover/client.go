// Package pushover mirrors in-app notices to a phone.
package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smartthingies/internal/infra"
)

const (
	defaultEndpoint = "https://api.pushover.net/1/messages.json"
	defaultTitle    = "SmartThingies"
	maxMessageLen   = 1024
)

type Client struct {
	token      string
	userKey    string
	endpoint   string
	title      string
	httpClient *http.Client
	retry      infra.RetryConfig
}

func NewClient(token, userKey string) *Client {
	retry := infra.DefaultRetryConfig()
	retry.MaxAttempts = 2

	return &Client{
		token:      token,
		userKey:    userKey,
		endpoint:   defaultEndpoint,
		title:      defaultTitle,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      retry,
	}
}

// WithEndpoint points the client at another messages URL.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

type apiResponse struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
}

// Notify sends message as a push notification. Without credentials it does nothing.
// Server errors are retried once; rejected requests are not.
func (c *Client) Notify(ctx context.Context, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	if len(message) > maxMessageLen {
		message = message[:maxMessageLen]
	}

	form := url.Values{}
	form.Set("token", c.token)
	form.Set("user", c.userKey)
	form.Set("message", message)
	form.Set("title", c.title)
	encoded := form.Encode()

	return infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(encoded))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err = fmt.Errorf("pushover error: %s%s", resp.Status, describeErrors(body))
		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return err
		}
		return infra.Permanent(err)
	})
}

func describeErrors(body []byte) string {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Errors) == 0 {
		return ""
	}
	return ": " + strings.Join(resp.Errors, "; ")
}
