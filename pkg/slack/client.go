package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookTypeIncoming is the webhook-type discriminator for plain
// incoming webhooks.
const WebhookTypeIncoming = "INCOMING_WEBHOOK"

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL  string
	webhookType string
	httpClient  *http.Client
}

// NewClient creates a webhook client. webhookType defaults to
// WebhookTypeIncoming when empty.
func NewClient(webhookURL, webhookType string) *Client {
	if webhookType == "" {
		webhookType = WebhookTypeIncoming
	}
	return &Client{
		webhookURL:  webhookURL,
		webhookType: webhookType,
		httpClient:  &http.Client{},
	}
}

// SetWebhookURL overrides the destination URL for testing purposes.
func (c *Client) SetWebhookURL(url string) {
	c.webhookURL = url
}

// PostMessage delivers one message to the webhook. Single best-effort
// attempt: any transport or non-2xx failure is returned, never retried.
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	if c.webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}
	if c.webhookType != WebhookTypeIncoming {
		return fmt.Errorf("unsupported webhook type: %s", c.webhookType)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook error %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
