package notify

import "context"

// Message is a push payload addressed to a topic. Data carries the
// client-side routing hints.
type Message struct {
	Topic string            `json:"topic"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notifier delivers one message to everyone subscribed to its topic.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
