// Package notify posts sweep outcomes to chat webhooks.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// Notifier sends a plain-text message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// SlackNotifier sends notifications to Slack via a Webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a message to the configured Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	msg := &slack.WebhookMessage{Text: message}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}
