package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes messages to the structured log instead of a gateway.
// Used when no push endpoint is configured, and in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	slog.Info("Notification (log only)", "topic", msg.Topic, "title", msg.Title, "body", msg.Body, "data", msg.Data)
	return nil
}
