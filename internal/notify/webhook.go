package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultSendTimeout = 10 * time.Second

// WebhookNotifier POSTs messages as JSON to a push gateway endpoint, one
// request per message.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	headers map[string]string
}

type WebhookOption func(*WebhookNotifier)

func WithHTTPClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		n.client = client
	}
}

// WithHeader adds a static header to every request, typically an
// Authorization token for the gateway.
func WithHeader(key, value string) WebhookOption {
	return func(n *WebhookNotifier) {
		n.headers[key] = value
	}
}

func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: defaultSendTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send notification: gateway returned %d", resp.StatusCode)
	}

	slog.Debug("Notification delivered", "topic", msg.Topic, "status", resp.StatusCode)
	return nil
}
